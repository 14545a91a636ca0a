// Package cargo provides a registry client for crates.io.
package cargo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depfence/depfence/internal/core"
)

const (
	DefaultURL = "https://crates.io"
	ecosystem  = core.EcosystemCargo
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

type crateResponse struct {
	Versions []versionInfo `json:"versions"`
}

type versionInfo struct {
	Num       string `json:"num"`
	Yanked    bool   `json:"yanked"`
	CreatedAt string `json:"created_at"`
}

type ownersResponse struct {
	Users []ownerInfo `json:"users"`
}

type ownerInfo struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

func (r *Registry) Fetch(ctx context.Context, name string) (*core.Metadata, error) {
	url := fmt.Sprintf("%s/api/v1/crates/%s", r.baseURL, name)

	var resp crateResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	md := &core.Metadata{}
	for _, v := range resp.Versions {
		if v.Yanked {
			continue
		}
		md.ReleaseCount++
		if t, err := time.Parse(time.RFC3339, v.CreatedAt); err == nil && t.After(md.LatestReleaseAt) {
			md.LatestReleaseAt = t
		}
	}

	// Owner list is a second endpoint; its failure must not discard the
	// release data already in hand.
	md.Maintainers = r.fetchOwners(ctx, name)

	return md, nil
}

func (r *Registry) fetchOwners(ctx context.Context, name string) []string {
	url := fmt.Sprintf("%s/api/v1/crates/%s/owner_user", r.baseURL, name)

	var resp ownersResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		return nil
	}

	handles := make([]string, 0, len(resp.Users))
	for _, u := range resp.Users {
		handle := u.Login
		if handle == "" {
			handle = u.Name
		}
		if handle != "" {
			handles = append(handles, handle)
		}
	}
	return handles
}
