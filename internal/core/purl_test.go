package core

import "testing"

func TestIdentifierPURL(t *testing.T) {
	tests := []struct {
		id   Identifier
		want string
	}{
		{Identifier{Ecosystem: EcosystemPyPI, Name: "Typing_Extensions"}, "pkg:pypi/typing-extensions"},
		{Identifier{Ecosystem: EcosystemNPM, Name: "@babel/core"}, "pkg:npm/@babel/core"},
		{Identifier{Ecosystem: EcosystemCargo, Name: "serde"}, "pkg:cargo/serde"},
		{Identifier{Ecosystem: EcosystemGo, Name: "github.com/spf13/cobra"}, "pkg:golang/github.com/spf13/cobra"},
		{Identifier{Ecosystem: EcosystemGitHub, Name: "psf/requests"}, "pkg:github/psf/requests"},
	}

	for _, tt := range tests {
		if got := tt.id.PURL(); got != tt.want {
			t.Errorf("PURL(%+v) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestIdentifierKeyDistinguishesConstraint(t *testing.T) {
	a := Identifier{Ecosystem: EcosystemPyPI, Name: "requests", Constraint: ">=2.0"}
	b := Identifier{Ecosystem: EcosystemPyPI, Name: "requests"}
	if a.Key() == b.Key() {
		t.Error("identifiers with different constraints must not share a cache key")
	}
	if a.Key() != a.Key() {
		t.Error("key must be stable")
	}
}
