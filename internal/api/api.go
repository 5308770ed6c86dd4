package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/openHPI/namestore/internal/api/auth"
	"github.com/openHPI/namestore/internal/config"
	"github.com/openHPI/namestore/pkg/logging"
	"github.com/openHPI/namestore/pkg/monitoring"
	"github.com/openHPI/namestore/pkg/namestore"
)

var log = logging.GetLogger("api")

const (
	BasePath    = "/api/v1"
	HealthPath  = "/health"
	VersionPath = "/version"
	NamesPath   = "/names"
	SizePath    = "/size"
	SearchPath  = "/search"

	healthRouteName  = "health"
	versionRouteName = "version"
)

// NewRouter returns the handler of the name store API for the passed store.
// Every request is logged and monitored. The name routes require the configured token, if any.
func NewRouter(store namestore.Store) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.Use(logging.HTTPLoggingMiddleware, monitoring.InfluxDB2Middleware)

	v1 := router.PathPrefix(BasePath).Subrouter()
	v1.HandleFunc(HealthPath, Health(store)).Methods(http.MethodGet).Name(healthRouteName)
	v1.HandleFunc(VersionPath, Version).Methods(http.MethodGet).Name(versionRouteName)

	names := v1
	if auth.InitializeAuthentication() {
		names = v1.NewRoute().Subrouter()
		names.Use(auth.HTTPAuthenticationMiddleware)
	}
	(&NameController{store: store}).ConfigureRoutes(names)
	return router
}

func notFound(writer http.ResponseWriter, request *http.Request) {
	log.WithContext(request.Context()).
		WithField("path", logging.RemoveNewlineSymbol(request.URL.Path)).
		Debug("No route matched")
	writer.WriteHeader(http.StatusNotFound)
}

// Version responds with the release the server reports to Sentry or 404 if none is configured.
func Version(writer http.ResponseWriter, request *http.Request) {
	if release := config.Config.Sentry.Release; release != "" {
		sendJSON(request.Context(), writer, release, http.StatusOK)
		return
	}
	writer.WriteHeader(http.StatusNotFound)
}
