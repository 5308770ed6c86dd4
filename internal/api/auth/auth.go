package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/openHPI/namestore/internal/config"
	"github.com/openHPI/namestore/pkg/logging"
)

var log = logging.GetLogger("api/auth")

// TokenHeader carries the token that grants access to the name routes.
const TokenHeader = "X-NameStore-Token"

var correctAuthenticationToken []byte

// InitializeAuthentication reads the token from the configuration.
// It returns false iff no token is configured, in which case the name routes stay public.
func InitializeAuthentication() bool {
	if config.Config.Server.Token == "" {
		return false
	}
	correctAuthenticationToken = []byte(config.Config.Server.Token)
	return true
}

// HTTPAuthenticationMiddleware rejects requests without the configured token with 401 Unauthorized.
// The rejected token is never logged.
func HTTPAuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r.Header.Get(TokenHeader)) {
			log.WithContext(r.Context()).
				WithField("route", logging.RouteName(r)).
				Debug("Rejected request without valid token")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func authorized(token string) bool {
	return len(correctAuthenticationToken) > 0 &&
		subtle.ConstantTimeCompare([]byte(token), correctAuthenticationToken) == 1
}
