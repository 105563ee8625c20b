package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

func channelSum(c color.Color) (float64, error) {
	return float64(c.R + c.G + c.B), nil
}

func TestGridResolution(t *testing.T) {
	tests := []struct {
		numIter int
		want    int
	}{
		{-5, 0},
		{0, 0},
		{1, 1},
		{7, 1},
		{8, 2},
		{26, 2},
		{27, 3},
		{63, 3},
		{64, 4},
		{125, 5},
		{1000, 10},
		{999, 9},
		{2097151 * 2097151 * 2097151, 2097151},
		{2097151*2097151*2097151 - 1, 2097150},
		{math.MaxInt64, 2097151},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GridResolution(tt.numIter), "numIter=%d", tt.numIter)
	}
}

func TestGridValues(t *testing.T) {
	assert.Nil(t, GridValues(0))
	assert.Equal(t, []int{128}, GridValues(1))
	assert.Equal(t, []int{0, 255}, GridValues(2))
	assert.Equal(t, []int{0, 128, 255}, GridValues(3))
	assert.Equal(t, []int{0, 85, 170, 255}, GridValues(4))
	assert.Equal(t, []int{0, 64, 128, 191, 255}, GridValues(5))
}

func TestGridColorSearch_SizeMatchesCube(t *testing.T) {
	for n := 0; n <= 130; n++ {
		res, err := GridColorSearch(channelSum, n)
		require.NoError(t, err)

		k := GridResolution(n)
		assert.Len(t, res.Candidates, k*k*k, "numIter=%d", n)
		assert.Len(t, res.Scores, len(res.Candidates), "numIter=%d", n)
	}
}

func TestGridColorSearch_TwentySeven(t *testing.T) {
	res, err := GridColorSearch(channelSum, 27)
	require.NoError(t, err)
	require.Equal(t, 27, res.Len())

	seen := map[int]bool{}
	for i, c := range res.Candidates {
		for _, v := range c.Channels() {
			seen[v] = true
		}
		assert.Equal(t, float64(c.R+c.G+c.B), res.Scores[i])
	}
	assert.Equal(t, map[int]bool{0: true, 128: true, 255: true}, seen)

	// Blue varies fastest, red slowest.
	assert.Equal(t, color.Color{R: 0, G: 0, B: 0}, res.Candidates[0])
	assert.Equal(t, color.Color{R: 0, G: 0, B: 128}, res.Candidates[1])
	assert.Equal(t, color.Color{R: 0, G: 128, B: 0}, res.Candidates[3])
	assert.Equal(t, color.Color{R: 128, G: 0, B: 0}, res.Candidates[9])
	assert.Equal(t, color.Color{R: 255, G: 255, B: 255}, res.Candidates[26])
}

func TestGridColorSearch_SinglePoint(t *testing.T) {
	res, err := GridColorSearch(channelSum, 5)
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, color.Color{R: 128, G: 128, B: 128}, res.Candidates[0])
}

func TestGridColorSearch_EmptyBudget(t *testing.T) {
	calls := 0
	res, err := GridColorSearch(func(color.Color) (float64, error) {
		calls++
		return 0, nil
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Empty(t, res.Scores)
	assert.Zero(t, calls)
}

func TestGridColorSearch_CallsEvaluateOncePerCandidate(t *testing.T) {
	calls := 0
	res, err := GridColorSearch(func(c color.Color) (float64, error) {
		calls++
		return 1, nil
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, 64, calls)
	assert.Equal(t, 64, res.Len())
}

func TestGridColorSearch_Errors(t *testing.T) {
	_, err := GridColorSearch(channelSum, -1)
	assert.ErrorIs(t, err, ErrNegativeIterations)

	_, err = GridColorSearch(nil, 8)
	assert.ErrorIs(t, err, ErrNilEvaluate)
}

func TestGridColorSearch_PropagatesEvaluateError(t *testing.T) {
	boom := errors.New("sensor offline")
	calls := 0
	res, err := GridColorSearch(func(color.Color) (float64, error) {
		calls++
		if calls == 3 {
			return 0, boom
		}
		return 0, nil
	}, 27)

	assert.Nil(t, res)
	assert.Same(t, boom, err)
	assert.Equal(t, 3, calls)
}

func TestGrid_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Grid{}.Search(ctx, func(color.Color) (float64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 0, nil
	}, 27)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
