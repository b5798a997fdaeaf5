/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package api provides the HTTP API for task submission.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acronis/taskgate/httpserver/middleware"
	"github.com/acronis/taskgate/internal/scheduler"
	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/restapi"
)

// ErrorDomain is the domain of API errors.
const ErrorDomain = "TaskGate"

// TaskPath is the path of the task submission endpoint.
const TaskPath = "/task"

// Submitter accepts tasks of identities.
type Submitter interface {
	Submit(ctx context.Context, identity string) (scheduler.Outcome, error)
}

// SubmitTaskRequest is the body of the task submission request.
type SubmitTaskRequest struct {
	UserID string `json:"user_id"`
}

// MessageResponse is the body of responses to accepted or rate limited submissions.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse is the body of responses to submissions without identity.
type ValidationErrorResponse struct {
	Error string `json:"error"`
}

const msgUserIDRequired = "User ID is required"

// TaskHandler handles task submissions.
type TaskHandler struct {
	submitter Submitter
	logger    log.FieldLogger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(submitter Submitter, logger log.FieldLogger) *TaskHandler {
	return &TaskHandler{submitter: submitter, logger: logger}
}

// Routes returns a function which registers API routes on the router.
func Routes(submitter Submitter, logger log.FieldLogger) func(router chi.Router) {
	h := NewTaskHandler(submitter, logger)
	return func(router chi.Router) {
		router.Method(http.MethodPost, TaskPath, h)
	}
}

// ServeHTTP submits the task of the identity from the request body.
func (h *TaskHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	logger := h.logger
	if ctxLogger := middleware.GetLoggerFromContext(r.Context()); ctxLogger != nil {
		logger = ctxLogger
	}

	var req SubmitTaskRequest
	if err := restapi.DecodeRequestJSON(r, &req); err != nil {
		restapi.RespondMalformedRequestOrInternalError(rw, ErrorDomain, err, logger)
		return
	}
	if req.UserID == "" {
		restapi.RespondCodeAndJSON(rw, http.StatusBadRequest, ValidationErrorResponse{msgUserIDRequired}, logger)
		return
	}

	outcome, err := h.submitter.Submit(r.Context(), req.UserID)
	if err != nil {
		logger.Error("failed to submit task", log.String("identity", req.UserID), log.Error(err))
		restapi.RespondInternalError(rw, ErrorDomain, logger)
		return
	}

	switch outcome {
	case scheduler.OutcomeAdmitted:
		restapi.RespondJSON(rw, MessageResponse{fmt.Sprintf("Task for %s is being processed", req.UserID)}, logger)
	case scheduler.OutcomeQueued:
		restapi.RespondCodeAndJSON(rw, http.StatusTooManyRequests,
			MessageResponse{fmt.Sprintf("Task for %s is rate limited and queued", req.UserID)}, logger)
	default:
		restapi.RespondCodeAndJSON(rw, http.StatusTooManyRequests,
			MessageResponse{fmt.Sprintf("Task for %s is rate limited and the backlog is full", req.UserID)}, logger)
	}
}
