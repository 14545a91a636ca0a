package core

import (
	"fmt"
	"regexp"
)

// maxNameLen bounds identifier names before any network use.
const maxNameLen = 128

// Per-ecosystem name patterns. All are anchored and paired with the length
// bound above so nothing attacker-shaped is ever interpolated into a URL.
var (
	pypiNameRegex  = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	npmNameRegex   = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*$`)
	cargoNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	goNameRegex    = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*(/[A-Za-z0-9._~-]+)+$`)
	ghNameRegex    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)
)

var namePatterns = map[Ecosystem]*regexp.Regexp{
	EcosystemPyPI:   pypiNameRegex,
	EcosystemNPM:    npmNameRegex,
	EcosystemCargo:  cargoNameRegex,
	EcosystemGo:     goNameRegex,
	EcosystemGitHub: ghNameRegex,
}

// Validate checks an identifier's name against its ecosystem's naming rules.
// It returns a *ValidationError when the name must not reach a registry.
func Validate(id Identifier) error {
	if id.Name == "" {
		return &ValidationError{Ecosystem: id.Ecosystem, Name: id.Name, Reason: "empty name"}
	}
	if len(id.Name) > maxNameLen {
		return &ValidationError{
			Ecosystem: id.Ecosystem,
			Name:      id.Name[:maxNameLen] + "...",
			Reason:    fmt.Sprintf("name exceeds %d characters", maxNameLen),
		}
	}

	pattern, ok := namePatterns[id.Ecosystem]
	if !ok {
		// Unknown ecosystems are not a validation failure; they resolve to
		// an Unsupported outcome downstream.
		return nil
	}
	if !pattern.MatchString(id.Name) {
		return &ValidationError{Ecosystem: id.Ecosystem, Name: id.Name, Reason: "disallowed characters"}
	}
	return nil
}
