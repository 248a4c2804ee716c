package validate

import "testing"

func TestFieldErrorsLifecycle(t *testing.T) {
	errs := FieldErrors{}
	if errs.OrNil() != nil {
		t.Fatal("empty field errors must flatten to nil")
	}

	errs.Required("name", "Name", "  ")
	errs.Required("city", "City", "Lahore")
	errs.Add("email", "Valid email is required")

	err := errs.OrNil()
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := errs["city"]; ok {
		t.Fatal("non-blank value must not produce a required error")
	}
	if errs["name"] != "Name is required" {
		t.Fatalf("unexpected message %q", errs["name"])
	}
	if err.Error() != "email: Valid email is required; name: Name is required" {
		t.Fatalf("unexpected rendering %q", err.Error())
	}
}
