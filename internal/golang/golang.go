// Package golang provides a registry client for the Go module proxy.
package golang

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depfence/depfence/internal/core"
)

const (
	DefaultURL = "https://proxy.golang.org"
	ecosystem  = core.EcosystemGo
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

type latestInfo struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// encodeForProxy encodes a module path according to the goproxy protocol.
// Capital letters are replaced with "!" followed by the lowercase letter.
// https://go.dev/ref/mod#goproxy-protocol
func encodeForProxy(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune('!')
			b.WriteRune(r + 32) // lowercase
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *Registry) Fetch(ctx context.Context, name string) (*core.Metadata, error) {
	encoded := encodeForProxy(name)

	listURL := fmt.Sprintf("%s/%s/@v/list", r.baseURL, encoded)
	body, err := r.client.GetText(ctx, listURL)
	if err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	md := &core.Metadata{}
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if strings.TrimSpace(line) != "" {
			md.ReleaseCount++
		}
	}
	if md.ReleaseCount == 0 {
		// An empty @v/list means the proxy has never seen a tagged release.
		return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
	}

	// @latest carries the publish timestamp of the newest version.
	latestURL := fmt.Sprintf("%s/%s/@latest", r.baseURL, encoded)
	var latest latestInfo
	if err := r.client.GetJSON(ctx, latestURL, &latest); err == nil {
		md.LatestReleaseAt = latest.Time
	}

	// The proxy protocol exposes no maintainer information; the handle list
	// stays empty and the scorer treats that as worst-case bus factor.
	return md, nil
}
