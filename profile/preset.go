package profile

import (
	"fmt"
	"net/http"
	"time"
)

// Interface names understood by the header registry.
const (
	InterfaceRIC = "RIC"
	InterfaceCA  = "CA"
)

// DefaultTimeout bounds a single attempt unless a profile overrides it.
const DefaultTimeout = 10 * time.Second

// common holds the settings shared by every preset.
func common() Config {
	return Config{
		AuthScheme:      Ptr(AuthNone),
		Timeout:         Ptr(DefaultTimeout),
		WithCredentials: Ptr(true),
		DefaultHeaders:  http.Header{"Content-Type": {"application/json"}},
		Options: Options{
			JoinPrefix:             Ptr(false),
			IsReturnNativeResponse: Ptr(false),
			IsTransformResponse:    Ptr(true),
			JoinParamsToURL:        Ptr(false),
			FormatDate:             Ptr(true),
			ErrorMessageMode:       Ptr(ErrorMessageModal),
			JoinTime:               Ptr(false),
			WithToken:              Ptr(true),
			RetryMaxCount:          Ptr(3),
		},
	}
}

// Preset returns the built-in configuration for kind, without a base URL.
func Preset(kind Kind) (Config, error) {
	switch kind {
	case KindDefault:
		return Merge(common(), Config{
			Kind:    KindDefault,
			Options: Options{InterfaceName: Ptr(InterfaceRIC)},
		}), nil
	case KindCA:
		return Merge(common(), Config{
			Kind:            KindCA,
			AuthScheme:      Ptr(AuthBearer),
			WithCredentials: Ptr(false),
			Options:         Options{InterfaceName: Ptr(InterfaceCA)},
		}), nil
	}

	return Config{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Resolve returns the preset for kind with its base URL filled in by r.
func Resolve(r Resolver, kind Kind) (Config, error) {
	cfg, err := Preset(kind)
	if err != nil {
		return Config{}, err
	}

	baseURL, err := r.ResolveBaseURL(kind)
	if err != nil {
		return Config{}, fmt.Errorf("resolving base url: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = Ptr(baseURL)
	}

	return cfg, nil
}
