package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ytqa/internal/httpx"
)

// ScrapeClient fetches captions by scraping the watch page HTML: the page
// embeds a JSON array of caption track descriptors whose baseUrl points at
// the timedtext document. This bypasses API-level restrictions at the cost
// of depending on the page's current markup conventions.
type ScrapeClient struct {
	http      *http.Client
	watchBase string
	limiter   *rate.Limiter
	maxJitter time.Duration
}

const (
	captionTracksMarker = `"captionTracks":`
	defaultWatchBase    = "https://www.youtube.com/watch?v="
)

var (
	baseURLRe      = regexp.MustCompile(`"baseUrl"\s*:\s*"([^"]+)"`)
	languageCodeRe = regexp.MustCompile(`"languageCode"\s*:\s*"([^"]+)"`)
)

// NewScrapeClient creates a watch-page scraper. A nil httpClient gets the
// default bounded-timeout client.
func NewScrapeClient(httpClient *http.Client) *ScrapeClient {
	if httpClient == nil {
		httpClient = httpx.NewClient(httpx.DefaultTimeout)
	}
	return &ScrapeClient{
		http:      httpClient,
		watchBase: defaultWatchBase,
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		maxJitter: 1900 * time.Millisecond,
	}
}

// Fetch scrapes the watch page for videoID and returns the parsed caption
// text plus the language code of the track used.
func (c *ScrapeClient) Fetch(ctx context.Context, videoID string) (string, string, error) {
	// Pace requests so repeated scrapes do not trip throttling: a
	// randomized sub-2s delay plus a shared rate limit per client.
	if c.maxJitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(c.maxJitter)))) //nolint:gosec // pacing, not crypto
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.watchBase+videoID, nil)
	if err != nil {
		return "", "", err
	}
	httpx.BrowserHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("could not access video page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("could not access video page: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return "", "", fmt.Errorf("could not access video page: %w", err)
	}

	region, ok := captionTracksRegion(string(body))
	if !ok {
		return "", "", errors.New("no caption tracks found in video page")
	}

	urls := baseURLRe.FindAllStringSubmatch(region, -1)
	if len(urls) == 0 {
		return "", "", errors.New("no caption URLs found in video page")
	}
	captionURL := unescapeCaptionURL(urls[0][1])

	lang := ""
	if m := languageCodeRe.FindStringSubmatch(region); m != nil {
		lang = m[1]
	}

	capResp, err := c.http.Get(captionURL)
	if err != nil {
		return "", "", fmt.Errorf("could not download captions: %w", err)
	}
	defer capResp.Body.Close()
	if capResp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("could not download captions: HTTP %d", capResp.StatusCode)
	}
	capBody, err := io.ReadAll(io.LimitReader(capResp.Body, 512*1024))
	if err != nil {
		return "", "", fmt.Errorf("could not download captions: %w", err)
	}

	text, err := ParseCaptionXML(capBody)
	if err != nil {
		return "", "", err
	}
	return text, lang, nil
}

// captionTracksRegion returns the slice of the page between the
// captionTracks marker and the end of its JSON array.
func captionTracksRegion(page string) (string, bool) {
	start := strings.Index(page, captionTracksMarker)
	if start < 0 {
		return "", false
	}
	region := page[start+len(captionTracksMarker):]
	if end := strings.IndexByte(region, ']'); end >= 0 {
		region = region[:end]
	}
	return region, true
}

// unescapeCaptionURL undoes the JSON-in-HTML escaping YouTube applies to
// track URLs: \u0026 ampersands and backslash artifacts like \/.
func unescapeCaptionURL(u string) string {
	u = strings.ReplaceAll(u, `\u0026`, "&")
	u = strings.ReplaceAll(u, `\`, "")
	return u
}
