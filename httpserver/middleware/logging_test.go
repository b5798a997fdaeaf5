/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/log/logtest"
)

func TestLogging(t *testing.T) {
	logRecorder := logtest.NewRecorder()
	next := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NotNil(t, GetLoggerFromContext(r.Context()))
		GetLoggerFromContext(r.Context()).Info("handling")
		rw.WriteHeader(http.StatusTooManyRequests)
		_, _ = rw.Write([]byte("queued"))
	})
	handler := RequestID()(LoggingWithOpts(logRecorder, LoggingOpts{RequestStart: true})(next))

	req := httptest.NewRequest(http.MethodPost, "/task", nil)
	req.Header.Set(headerForwardedFor, "10.0.0.1, 10.0.0.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	_, found := logRecorder.FindEntry("request started")
	require.True(t, found)

	handling, found := logRecorder.FindEntry("handling")
	require.True(t, found)
	require.NotEmpty(t, handling.FieldString("request_id"))

	completed := logRecorder.FindAllEntriesByFilter(func(e logtest.RecordedEntry) bool {
		return strings.HasPrefix(e.Text, "response completed in ")
	})
	require.Len(t, completed, 1)
	statusField, found := completed[0].FindField("status")
	require.True(t, found)
	require.Equal(t, http.StatusTooManyRequests, int(statusField.Int))
	bytesField, _ := completed[0].FindField("bytes_sent")
	require.Equal(t, 6, int(bytesField.Int))
	require.Equal(t, "10.0.0.1", completed[0].FieldString("origin_addr"))
	require.Equal(t, "POST", completed[0].FieldString("method"))
}

func TestLogging_ExcludedEndpoints(t *testing.T) {
	logRecorder := logtest.NewRecorder()
	status := http.StatusOK
	next := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(status)
	})
	handler := LoggingWithOpts(logRecorder, LoggingOpts{ExcludedEndpoints: []string{"/healthz"}})(next)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Empty(t, logRecorder.Entries())

	status = http.StatusServiceUnavailable
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Len(t, logRecorder.Entries(), 1)
}
