/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/log/logtest"
)

func TestRecovery(t *testing.T) {
	logRecorder := logtest.NewRecorder()
	next := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		panic("gate is broken")
	})
	handler := Recovery("TaskGate")(next)

	req := httptest.NewRequest(http.MethodPost, "/task", nil)
	req = req.WithContext(NewContextWithLogger(req.Context(), logRecorder))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.JSONEq(t, `{"error":{"domain":"TaskGate","code":"internalError","message":"Internal error."}}`, resp.Body.String())

	entry, found := logRecorder.FindEntry("Panic: gate is broken")
	require.True(t, found)
	require.Equal(t, log.LevelError, entry.Level)
	_, found = entry.FindField("stack")
	require.True(t, found)
}

func TestRecovery_AbortHandler(t *testing.T) {
	next := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Recovery("TaskGate")(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
