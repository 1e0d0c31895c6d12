package youtube

import (
	"context"
	"fmt"
	"log/slog"

	"ytqa/internal/domain"
)

// Extractor runs the caption fetch strategies in fixed order and stops at
// the first success. The order is a robustness-over-latency tradeoff: the
// captions API is the most accurate, the page scrape resists API-level
// restrictions, and the default-track grab is a last resort.
type Extractor struct {
	api    *APIClient
	scrape *ScrapeClient
	log    *slog.Logger
}

// NewExtractor wires the strategies around the given clients. Nil clients
// get defaults; a nil logger gets slog.Default.
func NewExtractor(api *APIClient, scrape *ScrapeClient, log *slog.Logger) *Extractor {
	if api == nil {
		api = NewAPIClient(nil)
	}
	if scrape == nil {
		scrape = NewScrapeClient(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{api: api, scrape: scrape, log: log}
}

type strategyResult struct {
	text string
	lang string
}

type strategy struct {
	name string
	run  func(ctx context.Context, videoID, preferred string) (strategyResult, error)
}

func (e *Extractor) strategies() []strategy {
	return []strategy{
		{name: "captions api", run: func(ctx context.Context, videoID, preferred string) (strategyResult, error) {
			text, lang, err := e.api.FetchWithFallback(ctx, videoID, preferred)
			return strategyResult{text: text, lang: lang}, err
		}},
		{name: "page scrape", run: func(ctx context.Context, videoID, _ string) (strategyResult, error) {
			text, lang, err := e.scrape.Fetch(ctx, videoID)
			return strategyResult{text: text, lang: lang}, err
		}},
		{name: "default track", run: func(ctx context.Context, videoID, _ string) (strategyResult, error) {
			text, err := e.api.FetchDefault(ctx, videoID)
			return strategyResult{text: text}, err
		}},
	}
}

// Extract resolves the video id and produces its transcript, or a single
// consolidated diagnostic when every strategy fails.
func (e *Extractor) Extract(ctx context.Context, url, preferred string) (*domain.Transcript, error) {
	videoID := ExtractVideoID(url)
	if videoID == "" {
		return nil, ErrInvalidURL
	}

	var attempts []AttemptError
	for _, s := range e.strategies() {
		res, err := runSafely(ctx, s, videoID, preferred)
		if err == nil {
			if res.lang != "" && res.lang != preferred {
				e.log.Info("transcript language substituted",
					slog.String("video", videoID),
					slog.String("requested", preferred),
					slog.String("used", res.lang))
			}
			return &domain.Transcript{
				VideoID:   videoID,
				Text:      res.text,
				Language:  res.lang,
				Requested: preferred,
			}, nil
		}
		e.log.Warn("transcript strategy failed",
			slog.String("strategy", s.name),
			slog.String("video", videoID),
			slog.Any("err", err))
		attempts = append(attempts, AttemptError{Strategy: s.name, Err: err})
	}

	// One final discovery call purely for diagnostics.
	langs := e.api.ListLanguages(ctx, videoID)
	return nil, &ExtractionError{VideoID: videoID, Languages: langs, Attempts: attempts}
}

// runSafely converts a strategy panic into an ordinary attempt failure so an
// unexpected slip in one strategy cannot take down the whole chain.
func runSafely(ctx context.Context, s strategy, videoID, preferred string) (res strategyResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return s.run(ctx, videoID, preferred)
}
