// Package dummy writes enveloped responses for the local fixture backend
// that dummy-mode profiles are routed to.
package dummy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adamwoolhether/profilehttp/dummy/errs"
	"github.com/adamwoolhether/profilehttp/dummy/mux"
	"github.com/adamwoolhether/profilehttp/envelope"
)

// RespondJSON writes data as JSON with statusCode.
func RespondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	mux.SetStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// RespondSuccess wraps body in a SUCCESS envelope stamped with the
// request's trace id and correlation id.
func RespondSuccess[T any](ctx context.Context, w http.ResponseWriter, body T) error {
	env := envelope.Success(body)
	stamp(ctx, &env.DataHeader)

	return RespondJSON(ctx, w, http.StatusOK, env)
}

// RespondError writes err as a failed envelope with err's status.
func RespondError(ctx context.Context, w http.ResponseWriter, err *errs.Error) error {
	env := envelope.Failure(err.Code, err.Message)
	stamp(ctx, &env.DataHeader)

	return RespondJSON(ctx, w, err.Status, env)
}

func stamp(ctx context.Context, h *envelope.DataHeader) {
	v := mux.GetValues(ctx)
	h.GlobID = v.TraceID
	h.UUID = v.UUID
}

// Decode reads a JSON request body into val. An empty body leaves val
// untouched.
func Decode[T any](r *http.Request, val *T) error {
	if err := json.NewDecoder(r.Body).Decode(val); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}
