package youtube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytqa/internal/httpx"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// extractorFixture backs a full Extractor with one httptest server covering
// every endpoint the strategies touch.
type extractorFixture struct {
	srv       *httptest.Server
	tracks    []CaptionTrack
	breakAPI  bool // timedtext downloads fail
	watchPage string
}

func newExtractorFixture(t *testing.T) *extractorFixture {
	t.Helper()
	f := &extractorFixture{}
	mux := http.NewServeMux()
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		if len(f.tracks) == 0 {
			fmt.Fprint(w, `{"playabilityStatus":{"status":"OK"}}`)
			return
		}
		fmt.Fprint(w, `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`)
		for i, tr := range f.tracks {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"baseUrl":"%s","languageCode":"%s"}`, tr.BaseURL, tr.LanguageCode)
		}
		fmt.Fprint(w, `]}}}`)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if f.breakAPI {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<transcript><text start="0" dur="1">caption in %s</text></transcript>`, r.URL.Query().Get("lang"))
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, f.watchPage)
	})
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"engagementPanels":[]}`)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *extractorFixture) addTrack(lang string) {
	f.tracks = append(f.tracks, CaptionTrack{
		BaseURL:      f.srv.URL + "/timedtext?lang=" + lang,
		LanguageCode: lang,
	})
}

func (f *extractorFixture) extractor() *Extractor {
	rc := httpx.RetryConfig{MaxRetries: 0, InitialWait: 1, MaxWait: 1, Multiplier: 1}
	api := &APIClient{
		http:          f.srv.Client(),
		retry:         rc,
		playerURL:     f.srv.URL + "/player",
		nextURL:       f.srv.URL + "/next",
		transcriptURL: f.srv.URL + "/get_transcript",
	}
	scrape := &ScrapeClient{
		http:      f.srv.Client(),
		watchBase: f.srv.URL + "/watch?v=",
	}
	return NewExtractor(api, scrape, discardLogger())
}

func TestExtractInvalidURL(t *testing.T) {
	e := NewExtractor(nil, nil, discardLogger())
	_, err := e.Extract(context.Background(), "https://example.com/video", "en")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestExtractStrategyOrder(t *testing.T) {
	e := NewExtractor(nil, nil, discardLogger())
	var names []string
	for _, s := range e.strategies() {
		names = append(names, s.name)
	}
	assert.Equal(t, []string{"captions api", "page scrape", "default track"}, names)
}

func TestExtractViaAPI(t *testing.T) {
	f := newExtractorFixture(t)
	f.addTrack("en")
	tr, err := f.extractor().Extract(context.Background(), "https://youtu.be/vid12345678", "en")
	require.NoError(t, err)
	assert.Equal(t, "vid12345678", tr.VideoID)
	assert.Equal(t, "caption in en", tr.Text)
	assert.Equal(t, "en", tr.Language)
	assert.Equal(t, "en", tr.Requested)
	assert.False(t, tr.Substituted())
}

func TestExtractLanguageSubstitution(t *testing.T) {
	f := newExtractorFixture(t)
	f.addTrack("en")
	tr, err := f.extractor().Extract(context.Background(), "https://youtu.be/vid12345678", "fr")
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Language)
	assert.Equal(t, "fr", tr.Requested)
	assert.True(t, tr.Substituted())
}

func TestExtractFallsBackToScrape(t *testing.T) {
	// API lists no tracks, but the watch page embeds a working track.
	f := newExtractorFixture(t)
	f.watchPage = `<html><script>{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"` +
		f.srv.URL + `/timedtext?lang=en","languageCode":"en"}]}}}</script></html>`
	tr, err := f.extractor().Extract(context.Background(), "https://youtu.be/vid12345678", "en")
	require.NoError(t, err)
	assert.Equal(t, "caption in en", tr.Text)
	assert.Equal(t, "en", tr.Language)
}

func TestExtractAllStrategiesFail(t *testing.T) {
	f := newExtractorFixture(t)
	f.addTrack("de")
	f.addTrack("ja")
	f.breakAPI = true
	f.watchPage = `<html>no tracks here</html>`

	_, err := f.extractor().Extract(context.Background(), "https://youtu.be/vid12345678", "en")
	require.Error(t, err)

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "vid12345678", exErr.VideoID)
	assert.Equal(t, []string{"de", "ja"}, exErr.Languages)
	require.Len(t, exErr.Attempts, 3)
	assert.Equal(t, "captions api", exErr.Attempts[0].Strategy)
	assert.Equal(t, "page scrape", exErr.Attempts[1].Strategy)
	assert.Equal(t, "default track", exErr.Attempts[2].Strategy)
	assert.Contains(t, err.Error(), "available languages: de, ja")
}

func TestExtractNoCaptionsMessage(t *testing.T) {
	f := newExtractorFixture(t)
	f.watchPage = `<html>no tracks here</html>`

	_, err := f.extractor().Extract(context.Background(), "https://youtu.be/vid12345678", "en")
	require.Error(t, err)
	assert.Equal(t, "no captions available for this video", err.Error())
}
