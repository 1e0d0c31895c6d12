package chunker

import (
	"errors"
	"strconv"
	"strings"

	"ytqa/internal/domain"
)

// RecursiveChunker splits text into character-bounded chunks with a fixed
// overlap between neighbors. Each window is cut at the latest natural
// boundary it contains — paragraph break, then sentence end, then word
// break — falling back to a hard character cut. Every chunk is a contiguous
// substring of the input, so stripping the overlap from each chunk after the
// first reconstructs the original text.
type RecursiveChunker struct {
	chunkSize int
	overlap   int
}

// Defaults match the original pipeline's splitter parameters.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

var boundaries = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// NewRecursiveChunker creates a chunker with the given window size and
// overlap. Non-positive or inconsistent values fall back to defaults.
func NewRecursiveChunker(chunkSize, overlap int) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &RecursiveChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits text into overlapping chunks. Any non-empty input yields at
// least one chunk; the output is deterministic for a given configuration.
func (c *RecursiveChunker) Chunk(videoID, text string) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty transcript text")
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []domain.Chunk
	start := 0
	idx := 0
	for {
		end := start + c.chunkSize
		if end >= n {
			chunks = append(chunks, c.newChunk(videoID, idx, string(runes[start:n])))
			break
		}
		cut := c.cutPoint(runes[start:end])
		chunks = append(chunks, c.newChunk(videoID, idx, string(runes[start:start+cut])))
		start += cut - c.overlap
		idx++
	}
	return chunks, nil
}

func (c *RecursiveChunker) newChunk(videoID string, idx int, text string) domain.Chunk {
	return domain.Chunk{
		VideoID: videoID,
		ChunkID: videoID + ":" + strconv.Itoa(idx),
		Text:    text,
		Index:   idx,
	}
}

// cutPoint returns the cut offset for a full-size window: one past the
// latest natural boundary, provided the cut still moves the next window
// forward past the overlap. Without a usable boundary the window is cut hard
// at its end.
func (c *RecursiveChunker) cutPoint(window []rune) int {
	w := string(window)
	for _, sep := range boundaries {
		if i := strings.LastIndex(w, sep); i >= 0 {
			cut := len([]rune(w[:i])) + len([]rune(sep))
			if cut > c.overlap {
				return cut
			}
		}
	}
	return len(window)
}
