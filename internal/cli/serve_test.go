package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/seqgen/pkg/cache"
	"github.com/matzehuels/seqgen/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c := New(io.Discard, LogInfo)
	runner := pipeline.NewRunner(cache.NewNullCache(), c.Logger)
	srv := httptest.NewServer(c.routes(runner, Config{}))
	t.Cleanup(srv.Close)
	return srv
}

func TestServeHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestServeRender(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/render?prefix=t-", "text/plain", strings.NewReader(testDiagram))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q, want application/xml", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	xml := string(body)
	if !strings.Contains(xml, "<mxfile") {
		t.Error("response should contain an mxfile element")
	}
	if !strings.Contains(xml, `id="t-`) {
		t.Error("response should use the requested ID prefix")
	}
}

func TestServeRenderInvalidSource(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/render", "text/plain", strings.NewReader("participant a\na -> a: x\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "SELF_MESSAGE") {
		t.Errorf("body %q should name the error code", body)
	}
}

func TestServeRenderEmptyBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/render", "text/plain", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestServeRenderCacheHitHeader(t *testing.T) {
	c := New(io.Discard, LogInfo)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, c.Logger)
	srv := httptest.NewServer(c.routes(runner, Config{}))
	defer srv.Close()

	post := func() *http.Response {
		resp, err := http.Post(srv.URL+"/render?prefix=t-", "text/plain", strings.NewReader(testDiagram))
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	first := post()
	first.Body.Close()
	if first.Header.Get("X-Cache") != "" {
		t.Error("first render should not be a cache hit")
	}

	second := post()
	second.Body.Close()
	if second.Header.Get("X-Cache") != "hit" {
		t.Error("second render should be served from cache")
	}
}
