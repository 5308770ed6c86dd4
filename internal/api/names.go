package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/mitchellh/mapstructure"
	"github.com/openHPI/namestore/pkg/dto"
	"github.com/openHPI/namestore/pkg/logging"
	"github.com/openHPI/namestore/pkg/monitoring"
	"github.com/openHPI/namestore/pkg/namestore"
)

const (
	fullNameKey        = "fullName"
	findAllRouteName   = "findAll"
	addRouteName       = "add"
	replaceRouteName   = "replace"
	updateRouteName    = "update"
	clearRouteName     = "clear"
	sizeRouteName      = "size"
	searchRouteName    = "search"
	removeRouteName    = "remove"
	sentryOperationAPI = "namestore.api"
)

var (
	ErrMissingFullName    = errors.New("fullName is required")
	ErrMissingUpdateNames = errors.New("original and updatedName are required")
	ErrNameExists         = errors.New("name already exists")
	ErrNameNotFound       = errors.New("name not found")
)

type NameController struct {
	store namestore.Store
}

func (n *NameController) ConfigureRoutes(router *mux.Router) {
	namesRouter := router.PathPrefix(NamesPath).Subrouter()
	namesRouter.HandleFunc("", n.findAll).Methods(http.MethodGet).Name(findAllRouteName)
	namesRouter.HandleFunc("", n.add).Methods(http.MethodPost).Name(addRouteName)
	namesRouter.HandleFunc("", n.replace).Methods(http.MethodPut).Name(replaceRouteName)
	namesRouter.HandleFunc("", n.update).Methods(http.MethodPatch).Name(updateRouteName)
	namesRouter.HandleFunc("", n.clear).Methods(http.MethodDelete).Name(clearRouteName)
	namesRouter.HandleFunc(SizePath, n.size).Methods(http.MethodGet).Name(sizeRouteName)
	namesRouter.HandleFunc(SearchPath, n.search).Methods(http.MethodGet).Name(searchRouteName)
	// Full names may contain slashes, so the variable spans the rest of the path.
	namesRouter.HandleFunc(fmt.Sprintf("/{%s:.+}", fullNameKey), n.remove).
		Methods(http.MethodDelete).Name(removeRouteName)
}

// findAll returns all stored names in their current order.
func (n *NameController) findAll(writer http.ResponseWriter, request *http.Request) {
	sendJSON(request.Context(), writer, &dto.NamesResponse{Names: n.store.FindAll()}, http.StatusOK)
}

// size returns the number of stored names.
func (n *NameController) size(writer http.ResponseWriter, request *http.Request) {
	sendJSON(request.Context(), writer, &dto.SizeResponse{Size: n.store.Size()}, http.StatusOK)
}

// add stores a new name. It responds with 409 Conflict if the name is already stored in any case.
func (n *NameController) add(writer http.ResponseWriter, request *http.Request) {
	monitoring.AddRequestSize(request)
	req := new(dto.NameRequest)
	if err := parseJSONRequestBody(writer, request, req); err != nil {
		log.WithContext(request.Context()).WithError(err).Debug("Invalid add request")
		return
	}
	if req.FullName == "" {
		writeBadRequest(request.Context(), writer, ErrMissingFullName)
		return
	}
	ctx := withFullName(request, req.FullName)

	var added bool
	logging.StartSpan(sentryOperationAPI, "Add name", ctx, func(_ context.Context) {
		added = n.store.Add(req.FullName)
	})
	if !added {
		log.WithContext(ctx).Debug("Name already exists")
		writeClientError(ctx, writer, ErrNameExists, dto.ErrorNameAlreadyExists, http.StatusConflict)
		return
	}
	sendJSON(ctx, writer, &dto.NameResponse{FullName: req.FullName}, http.StatusCreated)
}

// replace replaces all stored names. A missing names list empties the store.
func (n *NameController) replace(writer http.ResponseWriter, request *http.Request) {
	monitoring.AddRequestSize(request)
	req := new(dto.ReplaceNamesRequest)
	if err := parseJSONRequestBody(writer, request, req); err != nil {
		log.WithContext(request.Context()).WithError(err).Debug("Invalid replace request")
		return
	}

	logging.StartSpan(sentryOperationAPI, "Replace names", request.Context(), func(_ context.Context) {
		n.store.SetNames(req.Names)
	})
	log.WithContext(request.Context()).WithField("count", len(req.Names)).Info("Replaced names")
	writer.WriteHeader(http.StatusNoContent)
}

// update renames a stored name. It responds with 404 Not Found if the original name is not stored
// and with 409 Conflict if the updated name is already stored.
func (n *NameController) update(writer http.ResponseWriter, request *http.Request) {
	monitoring.AddRequestSize(request)
	req := new(dto.UpdateNameRequest)
	if err := parseJSONRequestBody(writer, request, req); err != nil {
		log.WithContext(request.Context()).WithError(err).Debug("Invalid update request")
		return
	}
	if req.Original == "" || req.UpdatedName == "" {
		writeBadRequest(request.Context(), writer, ErrMissingUpdateNames)
		return
	}
	ctx := withFullName(request, req.Original)

	var updated bool
	logging.StartSpan(sentryOperationAPI, "Update name", ctx, func(_ context.Context) {
		updated = n.store.Update(req.Original, req.UpdatedName)
	})
	if !updated {
		if _, ok := n.store.Find(req.Original); !ok {
			writeClientError(ctx, writer, ErrNameNotFound, dto.ErrorNameNotFound, http.StatusNotFound)
		} else {
			writeClientError(ctx, writer, ErrNameExists, dto.ErrorNameAlreadyExists, http.StatusConflict)
		}
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

// clear removes all stored names.
func (n *NameController) clear(writer http.ResponseWriter, request *http.Request) {
	logging.StartSpan(sentryOperationAPI, "Clear names", request.Context(), func(_ context.Context) {
		n.store.Clear()
	})
	log.WithContext(request.Context()).Info("Cleared names")
	writer.WriteHeader(http.StatusNoContent)
}

// remove deletes the name given in the path.
func (n *NameController) remove(writer http.ResponseWriter, request *http.Request) {
	fullName, ok := mux.Vars(request)[fullNameKey]
	if !ok || fullName == "" {
		writeBadRequest(request.Context(), writer, ErrMissingFullName)
		return
	}
	ctx := withFullName(request, fullName)

	var removed bool
	logging.StartSpan(sentryOperationAPI, "Remove name", ctx, func(_ context.Context) {
		removed = n.store.Remove(fullName)
	})
	if !removed {
		writeClientError(ctx, writer, ErrNameNotFound, dto.ErrorNameNotFound, http.StatusNotFound)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

// search looks names up by fullName, firstName or lastName (in this precedence).
func (n *NameController) search(writer http.ResponseWriter, request *http.Request) {
	query := new(dto.NameQuery)
	if err := decodeQuery(request.URL.Query(), query); err != nil {
		writeBadRequest(request.Context(), writer, err)
		return
	}
	if err := query.Validate(); err != nil {
		writeBadRequest(request.Context(), writer, err)
		return
	}

	switch {
	case query.FullName != "":
		ctx := withFullName(request, query.FullName)
		name, ok := n.store.Find(query.FullName)
		if !ok {
			writeClientError(ctx, writer, ErrNameNotFound, dto.ErrorNameNotFound, http.StatusNotFound)
			return
		}
		sendJSON(ctx, writer, &dto.NameResponse{FullName: name}, http.StatusOK)
	case query.FirstName != "":
		sendJSON(request.Context(), writer,
			&dto.NamesResponse{Names: n.store.FindByFirstName(query.FirstName)}, http.StatusOK)
	default:
		sendJSON(request.Context(), writer,
			&dto.NamesResponse{Names: n.store.FindByLastName(query.LastName)}, http.StatusOK)
	}
}

// decodeQuery decodes the first value of every query parameter into the passed structure.
func decodeQuery(values url.Values, structure interface{}) error {
	parameters := make(map[string]interface{}, len(values))
	for key := range values {
		parameters[key] = values.Get(key)
	}
	if err := mapstructure.Decode(parameters, structure); err != nil {
		return fmt.Errorf("error decoding query parameters: %w", err)
	}
	return nil
}

// withFullName attaches the full name to the monitoring point, the access log and the returned context.
func withFullName(request *http.Request, fullName string) context.Context {
	monitoring.AddNameMonitoringData(request, fullName)
	logging.AddFullName(request.Context(), fullName)
	return context.WithValue(request.Context(), dto.ContextKey(dto.KeyFullName), logging.RemoveNewlineSymbol(fullName))
}
