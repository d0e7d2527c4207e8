package envelope_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/adamwoolhether/profilehttp/envelope"
	"github.com/google/go-cmp/cmp"
)

type account struct {
	ID      string `json:"id"`
	Balance int    `json:"balance"`
}

func TestResult(t *testing.T) {
	tests := map[string]struct {
		body  string
		exp   string
		expOK bool
	}{
		"success":   {body: `{"dataHeader":{"result":"SUCCESS"},"dataBody":{}}`, exp: "SUCCESS", expOK: true},
		"failure":   {body: `{"dataHeader":{"result":"FAIL","resultCode":"E001"}}`, exp: "FAIL", expOK: true},
		"noHeader":  {body: `{"rstCd":0,"dta":{}}`},
		"numResult": {body: `{"dataHeader":{"result":1}}`},
		"notJSON":   {body: `<html></html>`},
		"emptyBody": {body: ``},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := envelope.Result([]byte(tc.body))
			if ok != tc.expOK || got != tc.exp {
				t.Errorf("expected (%q, %v), got (%q, %v)", tc.exp, tc.expOK, got, ok)
			}
		})
	}
}

func TestParseAndDecode(t *testing.T) {
	body := `{"dataHeader":{"result":"SUCCESS","resultCode":"0000","resultMsg":null,"resultDetail":null,"locale":"ko"},"dataBody":{"id":"a-1","balance":42}}`

	raw, err := envelope.Parse([]byte(body))
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if !raw.Succeeded() {
		t.Fatal("expected success")
	}
	if raw.DataHeader.Message() != "" || raw.DataHeader.Detail() != "" {
		t.Errorf("expected null message/detail, got %q/%q", raw.DataHeader.Message(), raw.DataHeader.Detail())
	}

	env, err := envelope.Decode[account](raw)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}

	if diff := cmp.Diff(account{ID: "a-1", Balance: 42}, env.DataBody); diff != "" {
		t.Errorf("unexpected body (-want +got):\n%s", diff)
	}
	if env.DataHeader.Locale != "ko" {
		t.Errorf("expected locale to survive decode, got %q", env.DataHeader.Locale)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := envelope.Parse([]byte(`{"dta":1}`))
	if !errors.Is(err, envelope.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestFailureRoundTrip(t *testing.T) {
	b, err := json.Marshal(envelope.Failure("E404", "not found"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	raw, err := envelope.Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if raw.Succeeded() {
		t.Error("failure envelope must not succeed")
	}
	if raw.DataHeader.ResultCode != "E404" || raw.DataHeader.Message() != "not found" {
		t.Errorf("unexpected header %+v", raw.DataHeader)
	}
}
