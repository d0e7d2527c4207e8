// Package profile describes the backends a client can talk to. A Config
// carries the base URL, auth scheme, default headers and request options
// of one backend; Merge layers per-call overrides on top of it.
//
// Every field is a pointer so that an unset field and an explicitly
// falsy one (false, 0, "") stay distinguishable through a merge.
package profile

import (
	"net/http"
	"time"
)

// Kind names a backend profile.
type Kind string

const (
	KindDefault Kind = "DEFAULT"
	KindCA      Kind = "CA"
)

// AuthScheme is the scheme prefixed to the token in the Authorization header.
type AuthScheme string

const (
	AuthNone   AuthScheme = "none"
	AuthBearer AuthScheme = "bearer"
	AuthBasic  AuthScheme = "basic"
)

// ErrorMessageMode selects how a failed request is surfaced to the user.
type ErrorMessageMode string

const (
	ErrorMessageNone    ErrorMessageMode = "none"
	ErrorMessageModal   ErrorMessageMode = "modal"
	ErrorMessageMessage ErrorMessageMode = "message"
)

// Config is the immutable description of a single backend.
type Config struct {
	Kind            Kind           `json:"kind"`
	BaseURL         *string        `json:"baseURL,omitempty" validate:"omitempty,url"`
	Timeout         *time.Duration `json:"timeout,omitempty" validate:"omitempty,gte=0"`
	AuthScheme      *AuthScheme    `json:"authScheme,omitempty" validate:"omitempty,oneof=none bearer basic"`
	WithCredentials *bool          `json:"withCredentials,omitempty"`
	DefaultHeaders  http.Header    `json:"defaultHeaders,omitempty"`
	Options         Options        `json:"requestOptions"`
}

// Options control how the request pipeline treats a single request.
type Options struct {
	JoinPrefix             *bool             `json:"joinPrefix,omitempty"`
	APIURL                 *string           `json:"apiUrl,omitempty"`
	URLPrefix              *string           `json:"urlPrefix,omitempty"`
	FormatDate             *bool             `json:"formatDate,omitempty"`
	JoinParamsToURL        *bool             `json:"joinParamsToUrl,omitempty"`
	ErrorMessageMode       *ErrorMessageMode `json:"errorMessageMode,omitempty" validate:"omitempty,oneof=none modal message"`
	JoinTime               *bool             `json:"joinTime,omitempty"`
	WithToken              *bool             `json:"withToken,omitempty"`
	RetryMaxCount          *int              `json:"retryMaxCount,omitempty" validate:"omitempty,gte=0"`
	InterfaceName          *string           `json:"interfaceName,omitempty"`
	IsReturnNativeResponse *bool             `json:"isReturnNativeResponse,omitempty"`
	IsTransformResponse    *bool             `json:"isTransformResponse,omitempty"`
}

// Ptr returns a pointer to v. It keeps literal overrides short:
//
//	profile.Options{RetryMaxCount: profile.Ptr(0)}
func Ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// BaseURLOrEmpty returns the base URL, or "" when unset.
func (c Config) BaseURLOrEmpty() string { return deref(c.BaseURL, "") }

// TimeoutOrDefault returns the per-attempt timeout. Zero means no timeout.
func (c Config) TimeoutOrDefault() time.Duration { return deref(c.Timeout, 0) }

// Scheme returns the auth scheme, AuthNone when unset.
func (c Config) Scheme() AuthScheme { return deref(c.AuthScheme, AuthNone) }

// Credentials reports whether cookies are kept across requests.
func (c Config) Credentials() bool { return deref(c.WithCredentials, false) }

func (o Options) ShouldJoinPrefix() bool      { return deref(o.JoinPrefix, false) }
func (o Options) APIURLOrEmpty() string       { return deref(o.APIURL, "") }
func (o Options) URLPrefixOrEmpty() string    { return deref(o.URLPrefix, "") }
func (o Options) ShouldFormatDate() bool      { return deref(o.FormatDate, false) }
func (o Options) ShouldJoinParamsToURL() bool { return deref(o.JoinParamsToURL, false) }
func (o Options) ShouldJoinTime() bool        { return deref(o.JoinTime, false) }
func (o Options) ShouldSendToken() bool       { return deref(o.WithToken, false) }
func (o Options) Interface() string           { return deref(o.InterfaceName, "") }
func (o Options) ReturnNative() bool          { return deref(o.IsReturnNativeResponse, false) }

// Retries returns the maximum number of retries, never negative.
func (o Options) Retries() int {
	return max(deref(o.RetryMaxCount, 0), 0)
}

// MessageMode returns the error message mode, ErrorMessageNone when unset.
func (o Options) MessageMode() ErrorMessageMode {
	return deref(o.ErrorMessageMode, ErrorMessageNone)
}

// TransformResponse reports whether the response envelope is unwrapped.
// An unset value means true.
func (o Options) TransformResponse() bool {
	return deref(o.IsTransformResponse, true)
}
