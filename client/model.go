package client

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/adamwoolhether/profilehttp/profile"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

// dateLayout is the format applied to time values when FormatDate is set.
const dateLayout = "2006-01-02 15:04:05"

// timeParam is the query key joinTime adds to GET requests.
const timeParam = "_t"

// execFn represents a func to operate on a response.
type execFn func(response *http.Response) error

// Descriptor describes one logical request.
//
// Options is merged over the profile's options for this call only;
// fields left nil inherit the profile's value.
type Descriptor struct {
	Method  string          `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	URL     string          `json:"url" validate:"required"`
	Params  map[string]any  `json:"params,omitempty" validate:"-"`
	Body    any             `json:"body,omitempty" validate:"-"`
	Header  http.Header     `json:"header,omitempty"`
	Options profile.Options `json:"requestOptions"`
}

// Response is the transport's answer to a single attempt.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Result is the outcome of a successful [Client.Do].
//
// Body holds dataBody for enveloped responses, or the raw response body
// when the envelope is not unwrapped. Raw is the final transport response.
type Result struct {
	Body     json.RawMessage
	Raw      *Response
	Attempts int
}

// prepared is a Descriptor after the beforeRequest stage. It is built
// once and replayed for every attempt.
type prepared struct {
	method  string
	url     *url.URL
	header  http.Header
	payload []byte
}
