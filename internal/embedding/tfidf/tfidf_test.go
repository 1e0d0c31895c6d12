package tfidf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBeforeCorpus(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed(context.Background(), "anything")
	assert.Error(t, err)
	assert.Zero(t, e.Dimension())
}

func TestEmbedBatchPreparesCorpus(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"gophers build concurrent servers",
		"gophers write tests",
		"servers handle requests",
	}
	vectors, err := e.EmbedBatch(context.Background(), corpus)
	require.NoError(t, err)
	require.Len(t, vectors, len(corpus))
	assert.Greater(t, e.Dimension(), 0)
	for _, v := range vectors {
		assert.Len(t, v, e.Dimension())
	}

	// Questions embed against the prepared corpus afterwards.
	qv, err := e.Embed(context.Background(), "what do gophers build")
	require.NoError(t, err)
	assert.Len(t, qv, e.Dimension())
}

func TestVectorsAreNormalized(t *testing.T) {
	e := NewEmbedder()
	vectors, err := e.EmbedBatch(context.Background(), []string{
		"alpha beta gamma",
		"alpha delta epsilon",
	})
	require.NoError(t, err)
	for _, v := range vectors {
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, norm, 1e-9)
	}
}

func TestSimilarTextsScoreHigher(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"the gopher digs a deep burrow underground",
		"stock markets closed higher today after earnings",
	}
	vectors, err := e.EmbedBatch(context.Background(), corpus)
	require.NoError(t, err)

	qv, err := e.Embed(context.Background(), "where does the gopher dig its burrow")
	require.NoError(t, err)

	simTo := func(v []float64) float64 {
		var dot float64
		for i := range qv {
			dot += qv[i] * v[i]
		}
		return dot
	}
	assert.Greater(t, simTo(vectors[0]), simTo(vectors[1]))
}

func TestEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	_, err := e.EmbedBatch(context.Background(), nil)
	assert.Error(t, err)
}
