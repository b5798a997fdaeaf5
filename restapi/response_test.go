/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/log/logtest"
)

func TestRespondCodeAndJSON(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondCodeAndJSON(resp, http.StatusTooManyRequests,
		map[string]string{"message": "Task for <alice> is rate limited and queued"}, logtest.NewRecorder())

	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	require.Equal(t, ContentTypeAppJSON, resp.Header().Get("Content-Type"))
	require.Equal(t, `{"message":"Task for <alice> is rate limited and queued"}`, resp.Body.String())
}

func TestRespondCodeAndJSON_NilData(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondCodeAndJSON(resp, http.StatusNoContent, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Empty(t, resp.Body.String())
}

func TestRespondError(t *testing.T) {
	MustInitAndRegisterMetrics("test")
	defer UnregisterMetrics()

	logRecorder := logtest.NewRecorder()
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusNotFound, NewError("TaskGate", ErrCodeNotFound, ErrMessageNotFound), logRecorder)

	require.Equal(t, http.StatusNotFound, resp.Code)
	require.JSONEq(t, `{"error":{"domain":"TaskGate","code":"notFound","message":"Not found."}}`, resp.Body.String())

	entry, found := logRecorder.FindEntry("error in response")
	require.True(t, found)
	require.Equal(t, ErrCodeNotFound, entry.FieldString("error_code"))
	require.Equal(t, 1.0, testutil.ToFloat64(metricsResponseErrors.WithLabelValues("TaskGate", ErrCodeNotFound)))
}

func TestRespondMalformedRequestOrInternalError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondMalformedRequestOrInternalError(resp, "TaskGate",
		&MalformedRequestError{http.StatusBadRequest, "Request body contains badly-formed JSON."}, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.JSONEq(t,
		`{"error":{"domain":"TaskGate","code":"badRequest","message":"Request body contains badly-formed JSON."}}`,
		resp.Body.String())

	resp = httptest.NewRecorder()
	RespondMalformedRequestOrInternalError(resp, "TaskGate", errors.New("gate failure"), nil)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.JSONEq(t, `{"error":{"domain":"TaskGate","code":"internalError","message":"Internal error."}}`, resp.Body.String())
}

func TestErrorCodeFromHTTPStatus(t *testing.T) {
	require.Equal(t, "badRequest", ErrorCodeFromHTTPStatus(http.StatusBadRequest))
	require.Equal(t, "unsupportedMediaType", ErrorCodeFromHTTPStatus(http.StatusUnsupportedMediaType))
	require.Equal(t, "tooManyRequests", ErrorCodeFromHTTPStatus(http.StatusTooManyRequests))
	require.Equal(t, ErrCodeInternal, ErrorCodeFromHTTPStatus(http.StatusInternalServerError))
}
