package validate_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/profilehttp/internal/validate"
)

type signup struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Plan    string  `json:"plan" validate:"omitempty,oneof=free pro"`
	Website *string `json:"website,omitempty" validate:"omitempty,url"`
	Secret  string  `json:"-" validate:"omitempty,len=4"`
}

func TestCheck(t *testing.T) {
	bad := "not a url"

	tests := map[string]struct {
		val signup
		exp map[string]string
	}{
		"valid": {
			val: signup{Name: "kim", Email: "kim@example.com", Plan: "pro"},
		},
		"missingRequired": {
			val: signup{Email: "kim@example.com"},
			exp: map[string]string{"signup.name": "This field is required"},
		},
		"oneof": {
			val: signup{Name: "kim", Email: "kim@example.com", Plan: "gold"},
			exp: map[string]string{"signup.plan": "must be one of [free pro]"},
		},
		"translated": {
			val: signup{Name: "kim", Email: "kim@example.com", Website: &bad},
			exp: map[string]string{"signup.website": "website must be a valid URL"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := validate.Check(tc.val)
			if tc.exp == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}

			fe, ok := errors.AsType[validate.FieldErrors](err)
			if !ok {
				t.Fatalf("expected FieldErrors, got %T: %v", err, err)
			}
			if diff := cmp.Diff(tc.exp, fe.Fields()); diff != "" {
				t.Errorf("field errors mismatch (-exp +got):\n%s", diff)
			}
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := validate.FieldErrors{
		{Field: "a", Err: "bad"},
		{Field: "b", Err: "worse"},
	}

	if got := fe.Error(); got != "a: bad; b: worse" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCheck_NonStruct(t *testing.T) {
	err := validate.Check("just a string")
	if err == nil {
		t.Fatal("expected an error for a non-struct value")
	}
	if _, ok := errors.AsType[validate.FieldErrors](err); ok {
		t.Fatal("non-struct input must not produce FieldErrors")
	}
}
