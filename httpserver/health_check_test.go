/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthCheckHandler(t *testing.T) {
	tests := []struct {
		name       string
		fn         HealthCheck
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no components",
			wantStatus: http.StatusOK,
			wantBody:   `{"components":{}}`,
		},
		{
			name: "all healthy",
			fn: func(ctx context.Context) (HealthCheckResult, error) {
				return HealthCheckResult{"scheduler": HealthCheckStatusOK, "task_log": HealthCheckStatusOK}, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"components":{"scheduler":true,"task_log":true}}`,
		},
		{
			name: "unhealthy component",
			fn: func(ctx context.Context) (HealthCheckResult, error) {
				return HealthCheckResult{"scheduler": HealthCheckStatusOK, "task_log": HealthCheckStatusFail}, nil
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"components":{"scheduler":true,"task_log":false}}`,
		},
		{
			name: "error",
			fn: func(ctx context.Context) (HealthCheckResult, error) {
				return nil, errors.New("unknown")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			NewHealthCheckHandler(tt.fn).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantBody != "" {
				require.JSONEq(t, tt.wantBody, resp.Body.String())
			}
		})
	}
}
