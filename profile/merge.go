package profile

import (
	"net/http"
	"slices"
)

// Merge layers override on top of base and returns the result. Any field
// set in override wins, including explicit false, 0 and "". Options merge
// field by field, DefaultHeaders merge key by key, and a header's value
// list is replaced as a whole. Neither input is modified.
func Merge(base, override Config) Config {
	out := Config{
		Kind:            base.Kind,
		BaseURL:         pick(base.BaseURL, override.BaseURL),
		Timeout:         pick(base.Timeout, override.Timeout),
		AuthScheme:      pick(base.AuthScheme, override.AuthScheme),
		WithCredentials: pick(base.WithCredentials, override.WithCredentials),
		DefaultHeaders:  MergeHeaders(base.DefaultHeaders, override.DefaultHeaders),
		Options:         MergeOptions(base.Options, override.Options),
	}
	if override.Kind != "" {
		out.Kind = override.Kind
	}

	return out
}

// MergeOptions applies the same right-biased rule as Merge to Options.
func MergeOptions(base, override Options) Options {
	return Options{
		JoinPrefix:             pick(base.JoinPrefix, override.JoinPrefix),
		APIURL:                 pick(base.APIURL, override.APIURL),
		URLPrefix:              pick(base.URLPrefix, override.URLPrefix),
		FormatDate:             pick(base.FormatDate, override.FormatDate),
		JoinParamsToURL:        pick(base.JoinParamsToURL, override.JoinParamsToURL),
		ErrorMessageMode:       pick(base.ErrorMessageMode, override.ErrorMessageMode),
		JoinTime:               pick(base.JoinTime, override.JoinTime),
		WithToken:              pick(base.WithToken, override.WithToken),
		RetryMaxCount:          pick(base.RetryMaxCount, override.RetryMaxCount),
		InterfaceName:          pick(base.InterfaceName, override.InterfaceName),
		IsReturnNativeResponse: pick(base.IsReturnNativeResponse, override.IsReturnNativeResponse),
		IsTransformResponse:    pick(base.IsTransformResponse, override.IsTransformResponse),
	}
}

// MergeHeaders merges two header maps key by key. For a key present in
// both, override's values replace base's; they are never appended.
func MergeHeaders(base, override http.Header) http.Header {
	if base == nil && override == nil {
		return nil
	}

	out := make(http.Header, len(base)+len(override))
	for k, v := range base {
		out[http.CanonicalHeaderKey(k)] = slices.Clone(v)
	}
	for k, v := range override {
		out[http.CanonicalHeaderKey(k)] = slices.Clone(v)
	}

	return out
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	return Merge(c, Config{})
}

// pick returns a fresh copy of override when set, else of base.
func pick[T any](base, override *T) *T {
	switch {
	case override != nil:
		v := *override
		return &v
	case base != nil:
		v := *base
		return &v
	default:
		return nil
	}
}
