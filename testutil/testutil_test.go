/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/acronis/taskgate/restapi"
)

func TestRequireNoErrorInChannel(t *testing.T) {
	RequireNoErrorInChannel(t, make(chan error, 1))
}

func TestRequireSamplesCountInHistogram(t *testing.T) {
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_histogram"})
	hist.Observe(1)
	hist.Observe(2)
	RequireSamplesCountInHistogram(t, hist, 2)
}

func TestRequireErrorInRecorder(t *testing.T) {
	resp := httptest.NewRecorder()
	restapi.RespondError(resp, http.StatusBadRequest, restapi.NewError("TestDomain", "badRequest", "Bad request."), nil)
	RequireErrorInRecorder(t, resp, http.StatusBadRequest, "TestDomain", "badRequest")
}

func TestRequireJSONInRecorder(t *testing.T) {
	type respData struct {
		Message string `json:"message"`
	}
	resp := httptest.NewRecorder()
	restapi.RespondJSON(resp, respData{Message: "ok"}, nil)
	RequireJSONInRecorder(t, resp, &respData{Message: "ok"}, &respData{})
}
