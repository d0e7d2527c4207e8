package client

import (
	"context"

	"github.com/adamwoolhether/profilehttp/notify"
	"github.com/adamwoolhether/profilehttp/profile"
)

// FailureHook is told about every logical request that ends in failure.
// It is not called for canceled requests or invalid descriptors.
type FailureHook func(ctx context.Context, err *ClassifiedError)

// failureMessage is the text published to the notifier in modal mode.
func failureMessage(err *ClassifiedError) string {
	return "API request failed: " + err.Message()
}

// reportFailure runs the built-in notification for mode and then any
// hooks registered with WithFailureHook.
func (c *Client) reportFailure(ctx context.Context, err *ClassifiedError, mode profile.ErrorMessageMode) {
	switch err.Kind {
	case KindCanceled, KindProgrammer:
		return
	}

	switch mode {
	case profile.ErrorMessageModal:
		if c.notifier != nil {
			c.notifier.Publish(notify.Notification{Message: failureMessage(err), Visible: true})
		}
	case profile.ErrorMessageMessage:
		c.logger.Warn(failureMessage(err), "kind", err.Kind.String(), "attempts", err.Attempts)
	}

	for _, hook := range c.hooks {
		hook(ctx, err)
	}
}
