package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ytqa/internal/domain"
)

// The prompt pins the model to the retrieved transcript context; the
// groundedness contract is enforced by instruction, not by verifying the
// answer afterwards.
const promptTemplate = `You are a helpful assistant.
Answer ONLY from the provided transcript context.
If the context is insufficient, just say you don't know.

%s
Question: %s`

// A transcript below this many characters is almost certainly a caption
// stub, not usable content.
const minTranscriptChars = 50

const previewChars = 500

// Exchange is one question/answer pair in the chat history.
type Exchange struct {
	Question string
	Answer   string
}

// Service glues the transcript source to the retrieval pipeline: extract,
// chunk, embed, index, then answer questions against the index. One Service
// holds the state for one session; it is not safe for concurrent use.
type Service struct {
	source     domain.TranscriptSource
	chunker    domain.Chunker
	embedder   domain.Embedder
	store      domain.VectorStore
	summarizer domain.Summarizer
	llm        domain.Completer

	topK   int
	fetchK int
	lambda float64

	transcript *domain.Transcript
	summary    string
	history    []Exchange
}

// Options tune retrieval; zero values get defaults (topK 4, fetchK 20,
// lambda 0.5).
type Options struct {
	TopK   int
	FetchK int
	Lambda float64
}

// New creates a session service around the given components.
func New(source domain.TranscriptSource, chunker domain.Chunker, embedder domain.Embedder,
	store domain.VectorStore, summarizer domain.Summarizer, llm domain.Completer, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.FetchK < opts.TopK {
		opts.FetchK = 20
	}
	if opts.Lambda <= 0 || opts.Lambda > 1 {
		opts.Lambda = 0.5
	}
	return &Service{
		source:     source,
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		summarizer: summarizer,
		llm:        llm,
		topK:       opts.TopK,
		fetchK:     opts.FetchK,
		lambda:     opts.Lambda,
	}
}

// ProcessVideo extracts the transcript for url and rebuilds the retrieval
// index from scratch. Any previously processed video, its chunks, and the
// chat history are discarded.
func (s *Service) ProcessVideo(ctx context.Context, url, preferredLang string) (*domain.Transcript, error) {
	s.transcript = nil
	s.summary = ""
	s.history = nil

	transcript, err := s.source.Extract(ctx, url, preferredLang)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(transcript.Text)) < minTranscriptChars {
		return nil, errors.New("transcript is too short or empty; the video might not have captions")
	}

	chunks, err := s.chunker.Chunk(transcript.VideoID, transcript.Text)
	if err != nil {
		return nil, fmt.Errorf("chunk transcript: %w", err)
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.store.Init(s.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	if err := s.store.Clear(); err != nil {
		return nil, fmt.Errorf("clear vector store: %w", err)
	}
	if err := s.store.Upsert(chunks, vectors); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	if s.summarizer != nil {
		s.summary = s.summarizer.Summarize(transcript.Text, 3)
	}
	s.transcript = transcript
	return transcript, nil
}

// Answer retrieves the chunks most relevant to question, assembles the
// grounded prompt, and asks the language model. Valid only after a
// successful ProcessVideo.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	if s.transcript == nil {
		return "", errors.New("no video processed yet")
	}

	qvec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	results, err := s.store.SearchMMR(qvec, s.topK, s.fetchK, s.lambda)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Chunk.Text)
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(parts, "\n\n"), question)

	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	s.history = append(s.history, Exchange{Question: question, Answer: answer})
	return answer, nil
}

// Transcript returns the currently processed transcript, or nil.
func (s *Service) Transcript() *domain.Transcript { return s.transcript }

// Summary returns a short extract of the current transcript.
func (s *Service) Summary() string { return s.summary }

// Preview returns the first part of the current transcript text.
func (s *Service) Preview() string {
	if s.transcript == nil {
		return ""
	}
	runes := []rune(s.transcript.Text)
	if len(runes) <= previewChars {
		return s.transcript.Text
	}
	return string(runes[:previewChars]) + "..."
}

// History returns the accumulated question/answer pairs for this video.
func (s *Service) History() []Exchange { return s.history }

// ClearHistory drops the chat history but keeps the processed video.
func (s *Service) ClearHistory() { s.history = nil }
