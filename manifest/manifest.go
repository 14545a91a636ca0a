// Package manifest parses dependency manifests into identifier sequences for
// scanning. Supported formats: requirements.txt-style files (PyPI) and
// package.json (npm).
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/depfence/depfence/internal/core"
)

// requirementRegex captures the package name and trailing constraint of one
// requirements.txt line.
var requirementRegex = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(.*)$`)

// ParseFile reads a manifest and returns its identifiers in manifest order.
// Format is chosen by filename: package.json parses as npm, everything else
// as requirements.txt-style PyPI. Entries with malformed names are kept so
// the scan can report them as UNKNOWN instead of silently dropping them.
func ParseFile(path string) ([]core.Identifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	if filepath.Base(path) == "package.json" || strings.HasSuffix(path, ".json") {
		return parsePackageJSON(data)
	}
	return parseRequirements(data), nil
}

func parseRequirements(data []byte) []core.Identifier {
	var ids []core.Identifier
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		// Strip inline comments and environment markers.
		if idx := strings.IndexAny(line, "#;"); idx != -1 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		match := requirementRegex.FindStringSubmatch(line)
		if match == nil {
			// Not name-shaped at all (URLs, local paths); carry the raw
			// token so validation can surface it as UNKNOWN.
			ids = append(ids, core.Identifier{Ecosystem: core.EcosystemPyPI, Name: line})
			continue
		}
		ids = append(ids, core.Identifier{
			Ecosystem:  core.EcosystemPyPI,
			Name:       match[1],
			Constraint: strings.TrimSpace(match[2]),
		})
	}
	return ids
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageJSON(data []byte) ([]core.Identifier, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}

	// JSON object order is not preserved by decoding, so each block is
	// sorted to keep the manifest order deterministic across runs.
	ids := appendSorted(nil, pkg.Dependencies)
	ids = appendSorted(ids, pkg.DevDependencies)
	return ids, nil
}

func appendSorted(ids []core.Identifier, deps map[string]string) []core.Identifier {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ids = append(ids, core.Identifier{
			Ecosystem:  core.EcosystemNPM,
			Name:       name,
			Constraint: deps[name],
		})
	}
	return ids
}
