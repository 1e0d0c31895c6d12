package domain

import "context"

// Transcript is the full plain text of one caption track. Language is the
// code of the track actually fetched, which may differ from the code the
// caller asked for.
type Transcript struct {
	VideoID   string
	Text      string
	Language  string
	Requested string
}

// Substituted reports whether the fetched track language differs from the
// requested one.
func (t Transcript) Substituted() bool {
	return t.Language != "" && t.Requested != "" && t.Language != t.Requested
}

// Chunk is a bounded-length substring of a transcript used for retrieval.
type Chunk struct {
	VideoID string
	ChunkID string
	Text    string
	Index   int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Chunker splits transcript text into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(videoID, text string) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// VectorStore persists vectors and supports diversified similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float64) error
	// SearchMMR retrieves topK chunks by maximal marginal relevance,
	// considering up to fetchK nearest candidates. lambda balances
	// similarity against diversity (1 = pure similarity).
	SearchMMR(vector []float64, topK, fetchK int, lambda float64) ([]SearchResult, error)
	Clear() error
}

// TranscriptSource produces a transcript for a video URL.
type TranscriptSource interface {
	Extract(ctx context.Context, url, preferredLang string) (*Transcript, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) string
}

// Completer generates an answer for a fully assembled prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QAService defines the operations exposed by the application core.
type QAService interface {
	ProcessVideo(ctx context.Context, url, preferredLang string) (*Transcript, error)
	Answer(ctx context.Context, question string) (string, error)
}
