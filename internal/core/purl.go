package core

import (
	"fmt"
	"strings"

	"github.com/git-pkgs/purl"
)

// ParsePURL converts a Package URL string into an Identifier.
// Supports both package PURLs (pkg:pypi/requests) and version PURLs
// (pkg:pypi/requests@2.31.0); a version becomes the declared constraint.
func ParsePURL(purlStr string) (Identifier, error) {
	p, err := purl.Parse(purlStr)
	if err != nil {
		return Identifier{}, fmt.Errorf("parsing purl %q: %w", purlStr, err)
	}

	name := p.Name
	if p.Namespace != "" {
		name = p.Namespace + "/" + p.Name
	}

	return Identifier{
		Ecosystem:  Ecosystem(p.Type),
		Name:       name,
		Constraint: p.Version,
	}, nil
}

// PURL returns the canonical Package URL for an identifier, without version.
func (id Identifier) PURL() string {
	name := id.Name
	if id.Ecosystem == EcosystemPyPI {
		name = normalizePyPIName(name)
	}
	return fmt.Sprintf("pkg:%s/%s", id.Ecosystem, name)
}

func normalizePyPIName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	return name
}
