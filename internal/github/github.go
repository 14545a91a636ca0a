// Package github provides a registry client for GitHub releases.
// Package names are "owner/repo" pairs; releases stand in for registry
// versions and recent contributors for the maintainer list.
package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depfence/depfence/internal/core"
)

const (
	DefaultURL = "https://api.github.com"
	ecosystem  = core.EcosystemGitHub
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

type releaseInfo struct {
	TagName     string    `json:"tag_name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

type contributorInfo struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

func (r *Registry) Fetch(ctx context.Context, name string) (*core.Metadata, error) {
	releasesURL := fmt.Sprintf("%s/repos/%s/releases?per_page=100", r.baseURL, name)

	var releases []releaseInfo
	if err := r.client.GetJSON(ctx, releasesURL, &releases); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	md := &core.Metadata{}
	for _, rel := range releases {
		if rel.Draft {
			continue
		}
		md.ReleaseCount++
		if rel.PublishedAt.After(md.LatestReleaseAt) {
			md.LatestReleaseAt = rel.PublishedAt
		}
	}

	md.Maintainers = r.fetchContributors(ctx, name)

	return md, nil
}

// fetchContributors returns contributor logins as maintainer handles.
// Contributor data is advisory; fetch failure leaves the list empty rather
// than failing the release data already fetched.
func (r *Registry) fetchContributors(ctx context.Context, name string) []string {
	url := fmt.Sprintf("%s/repos/%s/contributors?per_page=10", r.baseURL, name)

	var contributors []contributorInfo
	if err := r.client.GetJSON(ctx, url, &contributors); err != nil {
		return nil
	}

	handles := make([]string, 0, len(contributors))
	for _, c := range contributors {
		if c.Login != "" {
			handles = append(handles, c.Login)
		}
	}
	return handles
}
