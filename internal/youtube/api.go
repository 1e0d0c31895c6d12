package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ytqa/internal/httpx"
)

// APIClient talks to the Innertube transcript API. It backs both the
// structured strategy (language discovery + per-language fetch) and the
// unconstrained strategy (default track via /get_transcript).
type APIClient struct {
	http          *http.Client
	retry         httpx.RetryConfig
	playerURL     string
	nextURL       string
	transcriptURL string
}

// NewAPIClient creates an Innertube client. A nil httpClient gets the
// default bounded-timeout client.
func NewAPIClient(httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = httpx.NewClient(httpx.DefaultTimeout)
	}
	return &APIClient{
		http:          httpClient,
		retry:         httpx.DefaultRetryConfig,
		playerURL:     defaultPlayerURL,
		nextURL:       defaultNextURL,
		transcriptURL: defaultGetTranscriptURL,
	}
}

// listTracks queries the /player endpoint with the ANDROID client profile
// and returns the caption tracks in listing order.
func (c *APIClient) listTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	reqBody, err := json.Marshal(playerReq{
		VideoID: videoID,
		Context: playerCtx{
			Client: androidClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := httpx.RetryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.playerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", androidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", androidVersion)
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("player request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player request: HTTP %d", resp.StatusCode)
	}

	var player playerResp
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return nil, nil
	}
	return player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

// ListLanguages returns the discoverable caption language codes in listing
// order. A video without transcripts and a failed listing call both fold
// into an empty set.
func (c *APIClient) ListLanguages(ctx context.Context, videoID string) []string {
	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return nil
	}
	langs := make([]string, 0, len(tracks))
	seen := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.LanguageCode]; ok {
			continue
		}
		seen[t.LanguageCode] = struct{}{}
		langs = append(langs, t.LanguageCode)
	}
	return langs
}

// Fetch retrieves the caption text for exactly one language.
func (c *APIClient) Fetch(ctx context.Context, videoID, lang string) (string, error) {
	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	track, ok := findTrack(tracks, lang)
	if !ok {
		return "", fmt.Errorf("no transcript for language %q", lang)
	}
	return c.fetchTimedText(ctx, track.BaseURL)
}

// FetchWithFallback discovers available languages and fetches the best
// candidate: the preferred language if discovered, then English, then every
// remaining language in discovery order until one fetch succeeds. The
// language actually used is returned so callers can report a substitution.
func (c *APIClient) FetchWithFallback(ctx context.Context, videoID, preferred string) (string, string, error) {
	langs := c.ListLanguages(ctx, videoID)
	if len(langs) == 0 {
		return "", "", ErrNoTranscripts
	}

	candidates := make([]string, 0, len(langs))
	if contains(langs, preferred) {
		candidates = append(candidates, preferred)
	}
	if preferred != "en" && contains(langs, "en") {
		candidates = append(candidates, "en")
	}
	for _, l := range langs {
		if !contains(candidates, l) {
			candidates = append(candidates, l)
		}
	}

	var lastErr error
	for _, lang := range candidates {
		text, err := c.Fetch(ctx, videoID, lang)
		if err != nil {
			lastErr = err
			continue
		}
		return text, lang, nil
	}
	return "", "", fmt.Errorf("could not retrieve transcript in any available language: %w", lastErr)
}

// FetchDefault retrieves whatever transcript YouTube serves by default,
// with no language constraint: /next yields a continuation token for the
// transcript engagement panel, /get_transcript yields the segments.
func (c *APIClient) FetchDefault(ctx context.Context, videoID string) (string, error) {
	visitorData := generateVisitorData()

	nextData, err := c.postWeb(ctx, c.nextURL, map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client": webClientCtx{
				ClientName:    "WEB",
				ClientVersion: webVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("next request: %w", err)
	}

	token, ok := extractTranscriptToken(nextData)
	if !ok {
		return "", errors.New("no transcript panel in next response")
	}

	transcriptData, err := c.postWeb(ctx, c.transcriptURL, map[string]any{
		"params": token,
		"context": map[string]any{
			"client": webClientCtx{
				ClientName:    "WEB",
				ClientVersion: webVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("get_transcript request: %w", err)
	}

	var tr getTranscriptResp
	if err := json.Unmarshal(transcriptData, &tr); err != nil {
		return "", fmt.Errorf("decode transcript response: %w", err)
	}
	text := joinSegmentRuns(tr)
	if text == "" {
		return "", errors.New("empty transcript segments")
	}
	return text, nil
}

// fetchTimedText downloads and parses a caption track XML document.
func (c *APIClient) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := httpx.RetryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", httpx.RandomUserAgent())
		return c.http.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}
	return ParseCaptionXML(body)
}

// postWeb POSTs a JSON payload to an Innertube endpoint with WEB client headers.
func (c *APIClient) postWeb(ctx context.Context, endpoint string, payload any, visitorData string) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := httpx.RetryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?prettyPrint=false", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", httpx.RandomUserAgent())
		req.Header.Set("X-Youtube-Client-Name", "1")
		req.Header.Set("X-Youtube-Client-Version", webVersion)
		req.Header.Set("X-Goog-Visitor-Id", visitorData)
		req.Header.Set("Origin", "https://www.youtube.com")
		req.Header.Set("Referer", "https://www.youtube.com/")
		return c.http.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
}

// findTrack matches a language code exactly, then by prefix so that "en"
// still matches an "en-US" track.
func findTrack(tracks []CaptionTrack, lang string) (CaptionTrack, bool) {
	for _, t := range tracks {
		if t.LanguageCode == lang {
			return t, true
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, lang) {
			return t, true
		}
	}
	return CaptionTrack{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
