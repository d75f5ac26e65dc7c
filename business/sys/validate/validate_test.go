package validate_test

import (
	"testing"

	"github.com/ardanlabs/coin/business/sys/validate"
)

func Test_Check(t *testing.T) {
	type payload struct {
		Password string `json:"password" validate:"required,min=6"`
		Amount   uint64 `json:"amount" validate:"gt=0"`
	}

	if err := validate.Check(payload{Password: "secret", Amount: 10}); err != nil {
		t.Fatalf("Should be able to validate a good payload: %s", err)
	}

	err := validate.Check(payload{Password: "abc"})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should get field errors for a bad payload: %v", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["password"]; !exists {
		t.Logf("got: %v", fields)
		t.Fatalf("Should have an error for the password field.")
	}
	if _, exists := fields["amount"]; !exists {
		t.Logf("got: %v", fields)
		t.Fatalf("Should have an error for the amount field.")
	}
}
