package core

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		ecosystem Ecosystem
		name      string
		wantErr   bool
	}{
		{EcosystemPyPI, "requests", false},
		{EcosystemPyPI, "zope.interface", false},
		{EcosystemPyPI, "typing_extensions", false},
		{EcosystemPyPI, "-leading-dash", true},
		{EcosystemPyPI, "bad name", true},
		{EcosystemPyPI, "", true},
		{EcosystemPyPI, "e$il", true},
		{EcosystemNPM, "lodash", false},
		{EcosystemNPM, "@babel/core", false},
		{EcosystemNPM, "UPPER", true},
		{EcosystemCargo, "serde", false},
		{EcosystemCargo, "serde_json", false},
		{EcosystemCargo, "no.dots", true},
		{EcosystemGo, "github.com/spf13/cobra", false},
		{EcosystemGo, "plainname", true},
		{EcosystemGitHub, "psf/requests", false},
		{EcosystemGitHub, "norepo", true},
	}

	for _, tt := range tests {
		err := Validate(Identifier{Ecosystem: tt.ecosystem, Name: tt.name})
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%s, %q) error = %v, wantErr %v", tt.ecosystem, tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateLengthBound(t *testing.T) {
	long := strings.Repeat("a", 129)
	err := Validate(Identifier{Ecosystem: EcosystemPyPI, Name: long})
	if err == nil {
		t.Fatal("expected length error for 129-char name")
	}

	ok := strings.Repeat("a", 128)
	if err := Validate(Identifier{Ecosystem: EcosystemPyPI, Name: ok}); err != nil {
		t.Fatalf("128-char name should pass: %v", err)
	}
}

func TestValidateUnknownEcosystemPasses(t *testing.T) {
	// Unknown ecosystems resolve to Unsupported downstream; validation
	// must not reject them.
	if err := Validate(Identifier{Ecosystem: "gem", Name: "rails"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
