// Package npm provides a registry client for registry.npmjs.org.
package npm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/depfence/depfence/internal/core"
)

const (
	DefaultURL = "https://registry.npmjs.org"
	ecosystem  = core.EcosystemNPM
)

func init() {
	core.Register(ecosystem, DefaultURL, func(baseURL string, client *core.Client) core.Registry {
		return New(baseURL, client)
	})
}

type Registry struct {
	baseURL string
	client  *core.Client
}

func New(baseURL string, client *core.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (r *Registry) Ecosystem() core.Ecosystem {
	return ecosystem
}

type packageResponse struct {
	Versions    map[string]versionInfo `json:"versions"`
	Time        map[string]string      `json:"time"`
	Maintainers []maintainerInfo       `json:"maintainers"`
	DistTags    map[string]string      `json:"dist-tags"`
}

type versionInfo struct {
	Version    string `json:"version"`
	Deprecated string `json:"deprecated"`
}

type maintainerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r *Registry) Fetch(ctx context.Context, name string) (*core.Metadata, error) {
	escapedName := url.PathEscape(name)
	reqURL := fmt.Sprintf("%s/%s", r.baseURL, escapedName)

	var resp packageResponse
	if err := r.client.GetJSON(ctx, reqURL, &resp); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	md := &core.Metadata{
		ReleaseCount: len(resp.Versions),
	}

	// The time map carries per-version publish timestamps plus the
	// "created"/"modified" bookkeeping entries, which are skipped.
	for key, timeStr := range resp.Time {
		if key == "created" || key == "modified" {
			continue
		}
		if _, ok := resp.Versions[key]; !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339, timeStr); err == nil && t.After(md.LatestReleaseAt) {
			md.LatestReleaseAt = t
		}
	}

	seen := make(map[string]struct{}, len(resp.Maintainers))
	for _, m := range resp.Maintainers {
		handle := m.Name
		if handle == "" {
			handle = m.Email
		}
		if handle == "" {
			continue
		}
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		md.Maintainers = append(md.Maintainers, handle)
	}

	return md, nil
}
