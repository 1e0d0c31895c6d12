package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytqa/internal/httpx"
)

// fakeInnertube serves /player listings and per-language timedtext documents
// so APIClient can be exercised without the network.
type fakeInnertube struct {
	srv        *httptest.Server
	tracks     []CaptionTrack
	failLangs  map[string]bool
	fetchCalls int64
}

func newFakeInnertube(t *testing.T, langs ...string) *fakeInnertube {
	t.Helper()
	f := &fakeInnertube{failLangs: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Captions *struct {
				PlayerCaptionsTracklistRenderer struct {
					CaptionTracks []CaptionTrack `json:"captionTracks"`
				} `json:"playerCaptionsTracklistRenderer"`
			} `json:"captions"`
		}
		if len(f.tracks) > 0 {
			body.Captions = &struct {
				PlayerCaptionsTracklistRenderer struct {
					CaptionTracks []CaptionTrack `json:"captionTracks"`
				} `json:"playerCaptionsTracklistRenderer"`
			}{}
			body.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks = f.tracks
		}
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.fetchCalls, 1)
		lang := r.URL.Query().Get("lang")
		if f.failLangs[lang] {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<transcript><text start="0" dur="1">caption in %s</text></transcript>`, lang)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	for _, l := range langs {
		f.tracks = append(f.tracks, CaptionTrack{
			BaseURL:      f.srv.URL + "/timedtext?lang=" + l,
			LanguageCode: l,
		})
	}
	return f
}

func (f *fakeInnertube) client() *APIClient {
	return &APIClient{
		http:      f.srv.Client(),
		retry:     httpx.RetryConfig{MaxRetries: 0, InitialWait: 1, MaxWait: 1, Multiplier: 1},
		playerURL: f.srv.URL + "/player",
	}
}

func TestFetchWithFallbackPreferred(t *testing.T) {
	f := newFakeInnertube(t, "en", "es")
	text, lang, err := f.client().FetchWithFallback(context.Background(), "vid", "es")
	require.NoError(t, err)
	assert.Equal(t, "es", lang)
	assert.Equal(t, "caption in es", text)
}

func TestFetchWithFallbackSubstitutesEnglish(t *testing.T) {
	// fr was requested but only en and es exist; en wins over listing order.
	f := newFakeInnertube(t, "es", "en")
	text, lang, err := f.client().FetchWithFallback(context.Background(), "vid", "fr")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
	assert.Equal(t, "caption in en", text)
}

func TestFetchWithFallbackDiscoveryOrder(t *testing.T) {
	// No preferred, no English: first discoverable language wins.
	f := newFakeInnertube(t, "es", "ja")
	_, lang, err := f.client().FetchWithFallback(context.Background(), "vid", "fr")
	require.NoError(t, err)
	assert.Equal(t, "es", lang)
}

func TestFetchWithFallbackSkipsFailingTrack(t *testing.T) {
	f := newFakeInnertube(t, "es", "ja")
	f.failLangs["es"] = true
	_, lang, err := f.client().FetchWithFallback(context.Background(), "vid", "fr")
	require.NoError(t, err)
	assert.Equal(t, "ja", lang)
}

func TestFetchWithFallbackNoTranscripts(t *testing.T) {
	f := newFakeInnertube(t)
	_, _, err := f.client().FetchWithFallback(context.Background(), "vid", "en")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTranscripts))
	assert.Zero(t, atomic.LoadInt64(&f.fetchCalls), "no timedtext fetch should happen without tracks")
}

func TestFetchWithFallbackAllFail(t *testing.T) {
	f := newFakeInnertube(t, "en")
	f.failLangs["en"] = true
	_, _, err := f.client().FetchWithFallback(context.Background(), "vid", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not retrieve transcript in any available language")
}

func TestFindTrackPrefixMatch(t *testing.T) {
	tracks := []CaptionTrack{
		{LanguageCode: "en-US"},
		{LanguageCode: "de"},
	}
	track, ok := findTrack(tracks, "en")
	require.True(t, ok)
	assert.Equal(t, "en-US", track.LanguageCode)

	track, ok = findTrack(tracks, "de")
	require.True(t, ok)
	assert.Equal(t, "de", track.LanguageCode)

	_, ok = findTrack(tracks, "fr")
	assert.False(t, ok)
}

func TestFetchDefault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"engagementPanels":[{"getTranscriptEndpoint":{"params":"token%3D123"}}]}`)
	})
	mux.HandleFunc("/get_transcript", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Params string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "token=123", body.Params)
		fmt.Fprint(w, `{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{"body":{"transcriptSegmentListRenderer":{"initialSegments":[{"transcriptSegmentRenderer":{"snippet":{"runs":[{"text":"first"}]}}},{"transcriptSegmentRenderer":{"snippet":{"runs":[{"text":"second"}]}}}]}}}}}}}}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &APIClient{
		http:          srv.Client(),
		retry:         httpx.RetryConfig{MaxRetries: 0, InitialWait: 1, MaxWait: 1, Multiplier: 1},
		nextURL:       srv.URL + "/next",
		transcriptURL: srv.URL + "/get_transcript",
	}
	text, err := c.FetchDefault(context.Background(), "vid")
	require.NoError(t, err)
	assert.Equal(t, "first second", text)
}

func TestFetchDefaultNoPanel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"engagementPanels":[]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &APIClient{
		http:    srv.Client(),
		retry:   httpx.RetryConfig{MaxRetries: 0, InitialWait: 1, MaxWait: 1, Multiplier: 1},
		nextURL: srv.URL + "/next",
	}
	_, err := c.FetchDefault(context.Background(), "vid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transcript panel")
}
