package golang

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/depfence/depfence/internal/core"
)

func TestEncodeForProxy(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/spf13/cobra", "github.com/spf13/cobra"},
		{"github.com/Azure/azure-sdk-for-go", "github.com/!azure/azure-sdk-for-go"},
		{"github.com/BurntSushi/toml", "github.com/!burnt!sushi/toml"},
	}
	for _, tt := range tests {
		if got := encodeForProxy(tt.in); got != tt.want {
			t.Errorf("encodeForProxy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/github.com/spf13/cobra/@v/list":
			fmt.Fprint(w, "v1.0.0\nv1.1.0\nv1.2.0\n")
		case "/github.com/spf13/cobra/@latest":
			fmt.Fprint(w, `{"Version":"v1.2.0","Time":"2024-01-10T09:00:00Z"}`)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(404)
		}
	}))
	defer server.Close()

	reg := New(server.URL, core.DefaultClient())
	md, err := reg.Fetch(context.Background(), "github.com/spf13/cobra")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if md.ReleaseCount != 3 {
		t.Errorf("release count = %d, want 3", md.ReleaseCount)
	}
	want := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if !md.LatestReleaseAt.Equal(want) {
		t.Errorf("latest release = %v, want %v", md.LatestReleaseAt, want)
	}
	if len(md.Maintainers) != 0 {
		t.Errorf("proxy exposes no maintainers, got %v", md.Maintainers)
	}
}

func TestFetchEmptyListIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "\n")
	}))
	defer server.Close()

	reg := New(server.URL, core.DefaultClient())
	_, err := reg.Fetch(context.Background(), "example.com/ghost/module")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty version list, got %v", err)
	}
}

func TestFetchLatestFailureKeepsVersionCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/example.com/m/@v/list" {
			fmt.Fprint(w, "v0.1.0\n")
			return
		}
		w.WriteHeader(404)
	}))
	defer server.Close()

	reg := New(server.URL, core.DefaultClient())
	md, err := reg.Fetch(context.Background(), "example.com/m")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if md.ReleaseCount != 1 {
		t.Errorf("release count = %d, want 1", md.ReleaseCount)
	}
	if !md.LatestReleaseAt.IsZero() {
		t.Errorf("latest release should be unknown, got %v", md.LatestReleaseAt)
	}
}
