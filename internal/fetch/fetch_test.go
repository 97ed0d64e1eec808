// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

const page = `<html><body><div class="mw-parser-output">
<h2>Pistols</h2>
<h3>X12 (Glock 18)</h3>
<p>The Glock 18 is a select-fire pistol.</p>
</div></body></html>`

func testConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    5 * time.Second,
			UserAgents: []string{"test-agent"},
			MaxRetries: 2,
		},
		RequestDelay: time.Millisecond,
	}
}

func TestFetch_ParsesPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.UserAgent())
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer ts.Close()

	f := New(ts.Client(), testConfig())
	doc, err := f.Fetch(context.Background(), types.Source{ID: "G", URL: ts.URL})
	require.NoError(t, err)
	assert.Len(t, doc.Headings(), 2)
}

func TestFetch_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := New(ts.Client(), testConfig())
	_, err := f.Fetch(context.Background(), types.Source{ID: "G", URL: ts.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchBatch_ContinuesAfterFailure(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(page))
	})
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	sources := []types.Source{
		{ID: "A", URL: ts.URL + "/ok"},
		{ID: "B", URL: ts.URL + "/blocked"},
		{ID: "C", URL: ts.URL + "/ok"},
	}

	var out bytes.Buffer
	result := New(ts.Client(), testConfig()).FetchBatch(context.Background(), sources, &out)

	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	require.Len(t, result.Pages, 2)
	assert.Equal(t, "A", result.Pages[0].Source.ID)
	assert.Equal(t, "C", result.Pages[1].Source.ID)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "B", result.Failures[0].Source.ID)

	// The blocked page is retried MaxRetries times.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Contains(t, out.String(), "failed:   B")
	assert.Contains(t, out.String(), "Fetch summary: 2 fetched, 1 failed (total: 3)")
}

func TestFetchBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	result := New(nil, testConfig()).FetchBatch(ctx, []types.Source{{ID: "A", URL: "http://127.0.0.1:1"}}, &out)
	assert.Equal(t, 0, result.Total())
}

func TestSelectSources(t *testing.T) {
	configured := []types.Source{{ID: "A"}, {ID: "B"}, {ID: "C"}}

	all, err := SelectSources(configured, nil)
	require.NoError(t, err)
	assert.Equal(t, configured, all)

	picked, err := SelectSources(configured, []string{"C", "A"})
	require.NoError(t, err)
	assert.Equal(t, []types.Source{{ID: "C"}, {ID: "A"}}, picked)

	_, err = SelectSources(configured, []string{"Z"})
	assert.Error(t, err)
}
