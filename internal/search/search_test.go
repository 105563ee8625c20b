package search

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

func TestResultBest(t *testing.T) {
	var empty Result
	_, _, ok := empty.Best()
	assert.False(t, ok)

	res := newResult(4)
	res.add(color.Color{R: 1}, 3)
	res.add(color.Color{R: 2}, 1)
	res.add(color.Color{R: 3}, 1)
	res.add(color.Color{R: 4}, 2)

	best, score, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, color.Color{R: 2}, best)
	assert.Equal(t, 1.0, score)
}

func TestStrategyNames(t *testing.T) {
	strategies := []Strategy{Grid{}, NewRandom(nil), Mayfly{}}
	var names []string
	for _, s := range strategies {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"grid", "random", "mayfly"}, names)
}

func distanceTo(target color.Color) EvaluateFunc {
	return func(c color.Color) (float64, error) {
		d := math.Abs(float64(c.R-target.R)) + math.Abs(float64(c.G-target.G)) + math.Abs(float64(c.B-target.B))
		return d / 3, nil
	}
}

func TestMayfly_ApproachesTarget(t *testing.T) {
	target := color.Color{R: 200, G: 50, B: 100}
	res, err := Mayfly{PopSize: 20, Seed: 42}.Search(t.Context(), distanceTo(target), 2000)
	require.NoError(t, err)
	require.Positive(t, res.Len())
	require.Len(t, res.Scores, res.Len())

	for _, c := range res.Candidates {
		require.NoError(t, c.Validate())
	}

	_, score, ok := res.Best()
	require.True(t, ok)
	assert.Less(t, score, 15.0)
}

func TestMayfly_Budget(t *testing.T) {
	res, err := Mayfly{Seed: 1}.Search(t.Context(), channelSum, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())

	_, err = Mayfly{}.Search(t.Context(), channelSum, -3)
	assert.ErrorIs(t, err, ErrNegativeIterations)
}

func TestMayfly_PropagatesEvaluateError(t *testing.T) {
	boom := errors.New("bad candidate")
	calls := 0
	res, err := Mayfly{Seed: 1}.Search(t.Context(), func(color.Color) (float64, error) {
		calls++
		return 0, boom
	}, 100)

	assert.Nil(t, res)
	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestPositionToColor(t *testing.T) {
	assert.Equal(t, color.Color{R: 0, G: 128, B: 255}, positionToColor([]float64{-3.2, 127.5, 301}))
	assert.Equal(t, color.Color{R: 12, G: 13, B: 254}, positionToColor([]float64{12.4, 12.6, 254.2}))
}
