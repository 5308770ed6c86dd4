package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openHPI/namestore/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendJSONWithUnencodableContent(t *testing.T) {
	recorder := httptest.NewRecorder()
	sendJSON(context.Background(), recorder, make(chan int), http.StatusOK)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	response := new(dto.InternalServerError)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(response))
	assert.Equal(t, dto.ErrorUnknown, response.ErrorCode)
}

func TestWriteBadRequestOmitsErrorCode(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeBadRequest(context.Background(), recorder, errors.New("fullName is required"))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.JSONEq(t, `{"message": "fullName is required"}`, recorder.Body.String())
}
