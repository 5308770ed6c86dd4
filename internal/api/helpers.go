package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/openHPI/namestore/pkg/dto"
)

// sendJSON writes content as JSON body with the passed status code.
// Content that cannot be encoded results in a 500 Internal Server Error.
func sendJSON(ctx context.Context, writer http.ResponseWriter, content interface{}, status int) {
	body, err := json.Marshal(content)
	if err != nil {
		log.WithContext(ctx).WithError(err).Error("Could not encode response")
		body, _ = json.Marshal(&dto.InternalServerError{Message: err.Error(), ErrorCode: dto.ErrorUnknown})
		status = http.StatusInternalServerError
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if _, err := writer.Write(body); err != nil {
		log.WithContext(ctx).WithError(err).Warn("Could not write response")
	}
}

// writeClientError responds with a dto.ClientError. The errorCode may be empty.
func writeClientError(ctx context.Context, writer http.ResponseWriter, err error, errorCode dto.ErrorCode, status int) {
	sendJSON(ctx, writer, &dto.ClientError{Message: err.Error(), ErrorCode: errorCode}, status)
}

func writeBadRequest(ctx context.Context, writer http.ResponseWriter, err error) {
	writeClientError(ctx, writer, err, "", http.StatusBadRequest)
}

// parseJSONRequestBody decodes the body into structure. It responds 400 Bad Request itself if that fails.
func parseJSONRequestBody(writer http.ResponseWriter, request *http.Request, structure interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(structure); err != nil {
		writeBadRequest(request.Context(), writer, err)
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
