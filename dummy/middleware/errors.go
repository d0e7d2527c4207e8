package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/adamwoolhether/profilehttp/dummy"
	"github.com/adamwoolhether/profilehttp/dummy/errs"
	"github.com/adamwoolhether/profilehttp/dummy/mux"
)

// Errors renders errors coming out of the call chain as failed envelopes.
func Errors(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			appErr, ok := errors.AsType[*errs.Error](err)
			if !ok {
				appErr = errs.NewInternal(err)
			}

			reqLog := log.With("trace_id", mux.GetTraceID(ctx))
			reqLog.Error(err.Error(), "result_code", appErr.Code, "source_err_file", path.Base(appErr.FileName), "source_err_func", path.Base(appErr.FuncName))

			if appErr.InnerErr {
				appErr.Message = http.StatusText(appErr.Status)
			}

			return dummy.RespondError(ctx, w, appErr)
		}

		return h
	}

	return m
}
