package api

import (
	"net/http"

	"github.com/openHPI/namestore/pkg/namestore"
)

// Health responds 204 No Content as soon as the store answers a read.
// A store that stays locked lets the request time out.
func Health(store namestore.Store) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		log.WithContext(request.Context()).WithField("count", store.Size()).Trace("Healthy")
		writer.WriteHeader(http.StatusNoContent)
	}
}
