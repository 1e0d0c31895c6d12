package vectorstore

import (
	"math"

	"ytqa/internal/domain"
)

// Candidate pairs a scored chunk with its vector so retrieval can be
// re-ranked for diversity.
type Candidate struct {
	Result domain.SearchResult
	Vector []float64
}

// MMR greedily selects topK candidates by maximal marginal relevance:
// each step picks the candidate with the best balance of similarity to the
// query and dissimilarity to what is already selected. lambda 1 degenerates
// to pure similarity ranking, 0 to pure diversity.
func MMR(query []float64, candidates []Candidate, topK int, lambda float64) []domain.SearchResult {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}
	if lambda < 0 || lambda > 1 {
		lambda = 0.5
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}

	remaining := make([]Candidate, len(candidates))
	copy(remaining, candidates)
	var selected []Candidate
	results := make([]domain.SearchResult, 0, topK)

	for len(results) < topK {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i, cand := range remaining {
			score := lambda * Cosine(query, cand.Vector)
			if len(selected) > 0 {
				maxSim := math.Inf(-1)
				for _, s := range selected {
					if sim := Cosine(cand.Vector, s.Vector); sim > maxSim {
						maxSim = sim
					}
				}
				score -= (1 - lambda) * maxSim
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		chosen := remaining[bestIdx]
		selected = append(selected, chosen)
		results = append(results, chosen.Result)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return results
}

// Cosine returns the cosine similarity of two vectors, zero when either has
// no magnitude.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
