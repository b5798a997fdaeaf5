/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/restapi"
)

// RecoveryDefaultStackSize defines the default size of stack part which will be logged.
const RecoveryDefaultStackSize = 8192

type recoveryHandler struct {
	next        http.Handler
	errorDomain string
	stackSize   int
}

// Recovery is a middleware that recovers from panics, logs the panic value with a stacktrace
// and responds with 500 and an internal error of errDomain.
func Recovery(errDomain string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return &recoveryHandler{next: next, errorDomain: errDomain, stackSize: RecoveryDefaultStackSize}
	}
}

func (h *recoveryHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		logger := GetLoggerFromContext(r.Context())
		if p == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
			// net/http does not log a stack for this sentinel either.
			if logger != nil {
				logger.Warn("request has been aborted", log.Error(http.ErrAbortHandler))
			}
			panic(p)
		}
		if logger != nil {
			stack := make([]byte, h.stackSize)
			stack = stack[:runtime.Stack(stack, false)]
			logger.Error(fmt.Sprintf("Panic: %+v", p), log.Bytes("stack", stack))
		}
		restapi.RespondInternalError(rw, h.errorDomain, logger)
	}()
	h.next.ServeHTTP(rw, r)
}
