// Package pypi provides a registry client for pypi.org.
package pypi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depfence/depfence/internal/core"
)

const (
	DefaultURL = "https://pypi.org"
	ecosystem  = core.EcosystemPyPI
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
	Info     infoBlock                `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type infoBlock struct {
	Name            string `json:"name"`
	Author          string `json:"author"`
	AuthorEmail     string `json:"author_email"`
	Maintainer      string `json:"maintainer"`
	MaintainerEmail string `json:"maintainer_email"`
	Version         string `json:"version"`
}

type releaseFile struct {
	UploadTime        string `json:"upload_time"`
	UploadTimeISO8601 string `json:"upload_time_iso_8601"`
	Yanked            bool   `json:"yanked"`
}

func (r *Registry) Fetch(ctx context.Context, name string) (*core.Metadata, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, name)

	var resp packageResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	md := &core.Metadata{
		Maintainers: maintainerHandles(resp.Info),
	}

	for _, files := range resp.Releases {
		if len(files) == 0 {
			continue
		}
		md.ReleaseCount++
		for _, file := range files {
			if t, ok := parseUploadTime(file); ok && t.After(md.LatestReleaseAt) {
				md.LatestReleaseAt = t
			}
		}
	}

	return md, nil
}

// maintainerHandles derives distinct maintainer handles from the author and
// maintainer roles. PyPI's JSON API exposes no richer owner list.
func maintainerHandles(info infoBlock) []string {
	var handles []string
	if h := firstNonEmpty(info.Author, info.AuthorEmail); h != "" {
		handles = append(handles, h)
	}
	if h := firstNonEmpty(info.Maintainer, info.MaintainerEmail); h != "" && !contains(handles, h) {
		handles = append(handles, h)
	}
	return handles
}

func parseUploadTime(file releaseFile) (time.Time, bool) {
	if file.UploadTimeISO8601 != "" {
		if t, err := time.Parse(time.RFC3339, file.UploadTimeISO8601); err == nil {
			return t, true
		}
	}
	if file.UploadTime != "" {
		if t, err := time.Parse("2006-01-02T15:04:05", file.UploadTime); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
