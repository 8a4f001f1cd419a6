package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity_SelfIsMaximal(t *testing.T) {
	vectors := [][]int{
		{1},
		{1, 2, 3},
		{100, 0, 7, 9000, 3},
		{-4, 2},
	}
	for _, v := range vectors {
		assert.InDelta(t, 1.0, Similarity(v, v), 1e-12)
		assert.GreaterOrEqual(t, Similarity(v, v), Similarity(v, []int{5, 5, 5, 5, 5, 5}))
	}
}

func TestSimilarity_Sentinel(t *testing.T) {
	assert.Equal(t, SentinelSimilarity, Similarity(nil, []int{1, 2}))
	assert.Equal(t, SentinelSimilarity, Similarity([]int{1, 2}, []int{}))
	assert.Equal(t, SentinelSimilarity, Similarity([]int{0, 0}, []int{1, 2}))
}

func TestSimilarity_Bounded(t *testing.T) {
	s := Similarity([]int{1, 0}, []int{0, 1})
	assert.Equal(t, SentinelSimilarity, s)

	s = Similarity([]int{1, 2, 3}, []int{1, 2})
	assert.Greater(t, s, SentinelSimilarity)
	assert.Less(t, s, 1.0)

	s = Similarity([]int{1, 1}, []int{-1, -1})
	assert.Equal(t, SentinelSimilarity, s)
}

func TestTiktokenEncoder(t *testing.T) {
	enc, err := NewTiktokenEncoder("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEncoding, enc.Name())

	a := enc.Encode("please write a short alegory about the following topic: rivers")
	b := enc.Encode("please write a short alegory about the following topic: rivers")
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)

	svc := NewService(enc)
	ref := svc.Encode("the quick brown fox jumps over the lazy dog")
	same := svc.Similarity(ref, svc.Encode("the quick brown fox jumps over the lazy dog"))
	other := svc.Similarity(ref, svc.Encode("quarterly revenue grew by eleven percent"))
	assert.InDelta(t, 1.0, same, 1e-12)
	assert.Less(t, other, same)
}

func TestNewTiktokenEncoder_Unknown(t *testing.T) {
	_, err := NewTiktokenEncoder("not_an_encoding")
	assert.Error(t, err)
}
