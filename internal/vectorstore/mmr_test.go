package vectorstore

import (
	"math"
	"testing"

	"ytqa/internal/domain"
)

func cand(id string, vec ...float64) Candidate {
	return Candidate{
		Result: domain.SearchResult{Chunk: domain.Chunk{ChunkID: id}},
		Vector: vec,
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0}, []float64{1, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMMRPureSimilarity(t *testing.T) {
	// lambda 1: plain similarity ranking.
	query := []float64{1, 0}
	candidates := []Candidate{
		cand("far", 0, 1),
		cand("near", 1, 0.1),
		cand("mid", 1, 1),
	}
	got := MMR(query, candidates, 2, 1)
	if len(got) != 2 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0].Chunk.ChunkID != "near" || got[1].Chunk.ChunkID != "mid" {
		t.Errorf("order = %s, %s", got[0].Chunk.ChunkID, got[1].Chunk.ChunkID)
	}
}

func TestMMRPrefersDiversity(t *testing.T) {
	// Two near-duplicates close to the query plus one distinct candidate.
	// With balanced lambda the duplicate must lose its slot to the distinct
	// candidate.
	query := []float64{1, 1, 0}
	candidates := []Candidate{
		cand("dup-a", 1, 0, 0),
		cand("dup-b", 1, 0.01, 0),
		cand("other", 0, 1, 0),
	}
	got := MMR(query, candidates, 2, 0.5)
	if len(got) != 2 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0].Chunk.ChunkID != "dup-b" {
		t.Errorf("first pick = %s, want dup-b", got[0].Chunk.ChunkID)
	}
	if got[1].Chunk.ChunkID != "other" {
		t.Errorf("second pick = %s, want other", got[1].Chunk.ChunkID)
	}
}

func TestMMRBounds(t *testing.T) {
	query := []float64{1}
	if got := MMR(query, nil, 3, 0.5); got != nil {
		t.Error("expected nil for no candidates")
	}
	if got := MMR(query, []Candidate{cand("a", 1)}, 0, 0.5); got != nil {
		t.Error("expected nil for topK 0")
	}
	got := MMR(query, []Candidate{cand("a", 1)}, 5, 0.5)
	if len(got) != 1 {
		t.Errorf("topK beyond candidate count: got %d", len(got))
	}
}
