// Package envelope models the header/body wrapper every backend response
// is delivered in.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ResultSuccess is the only dataHeader.result value that unwraps.
const ResultSuccess = "SUCCESS"

// ErrMalformed is returned when a body is not an envelope.
var ErrMalformed = errors.New("malformed envelope")

// DataHeader carries the outcome and session metadata of a call.
type DataHeader struct {
	Result       string  `json:"result"`
	ResultCode   string  `json:"resultCode"`
	ResultMsg    *string `json:"resultMsg"`
	ResultDetail *string `json:"resultDetail"`
	TrxCd        string  `json:"trxCd,omitempty"`
	GlobID       string  `json:"globId,omitempty"`
	ReqMsgIlsi   string  `json:"reqMsgIlsi,omitempty"`
	OutMsgIlsi   string  `json:"outMsgIlsi,omitempty"`
	Language     string  `json:"language,omitempty"`
	SubChannel   string  `json:"subChannel,omitempty"`
	ChannelGbn   string  `json:"channelGbn,omitempty"`
	SubmitGbn    string  `json:"submitGbn,omitempty"`
	ProgramID    string  `json:"programId,omitempty"`
	WebProcGbn   string  `json:"webProcGbn,omitempty"`
	Locale       string  `json:"locale,omitempty"`
	EncG         int     `json:"encG,omitempty"`
	SecChal1     string  `json:"secChal1,omitempty"`
	SecChal2     string  `json:"secChal2,omitempty"`
	UUID         string  `json:"uuid,omitempty"`
}

// Envelope is the response wrapper.
type Envelope[T any] struct {
	DataHeader DataHeader `json:"dataHeader"`
	DataBody   T          `json:"dataBody"`
}

// Raw is an Envelope whose body has not been decoded.
type Raw = Envelope[json.RawMessage]

// Succeeded reports whether the envelope carries a successful result.
func (e Envelope[T]) Succeeded() bool {
	return e.DataHeader.Result == ResultSuccess
}

// Message returns resultMsg, or "" when it is null.
func (h DataHeader) Message() string {
	if h.ResultMsg == nil {
		return ""
	}
	return *h.ResultMsg
}

// Detail returns resultDetail, or "" when it is null.
func (h DataHeader) Detail() string {
	if h.ResultDetail == nil {
		return ""
	}
	return *h.ResultDetail
}

// Result peeks at dataHeader.result without decoding the body. ok is
// false when b is not JSON or carries no result field.
func Result(b []byte) (result string, ok bool) {
	if !gjson.ValidBytes(b) {
		return "", false
	}

	r := gjson.GetBytes(b, "dataHeader.result")
	if !r.Exists() || r.Type != gjson.String {
		return "", false
	}

	return r.String(), true
}

// Parse decodes b into a Raw envelope.
func Parse(b []byte) (Raw, error) {
	if _, ok := Result(b); !ok {
		return Raw{}, ErrMalformed
	}

	var env Raw
	if err := json.Unmarshal(b, &env); err != nil {
		return Raw{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return env, nil
}

// Decode decodes the body of a Raw envelope into T.
func Decode[T any](raw Raw) (Envelope[T], error) {
	out := Envelope[T]{DataHeader: raw.DataHeader}
	if len(raw.DataBody) == 0 || string(raw.DataBody) == "null" {
		return out, nil
	}

	if err := json.Unmarshal(raw.DataBody, &out.DataBody); err != nil {
		return Envelope[T]{}, fmt.Errorf("decoding data body: %w", err)
	}

	return out, nil
}

// Success wraps body in a successful envelope.
func Success[T any](body T) Envelope[T] {
	return Envelope[T]{
		DataHeader: DataHeader{Result: ResultSuccess, ResultCode: "0000"},
		DataBody:   body,
	}
}

// Failure builds a failed envelope with no body.
func Failure(code, msg string) Envelope[json.RawMessage] {
	h := DataHeader{Result: "FAIL", ResultCode: code}
	if msg != "" {
		h.ResultMsg = &msg
	}

	return Envelope[json.RawMessage]{DataHeader: h, DataBody: json.RawMessage("null")}
}
