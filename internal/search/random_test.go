package search

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

func TestRandomColorSearch_CountAndRange(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50, 500} {
		res, err := RandomColorSearch(channelSum, n, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		require.Len(t, res.Candidates, n)
		require.Len(t, res.Scores, n)

		for i, c := range res.Candidates {
			require.NoError(t, c.Validate())
			assert.Equal(t, float64(c.R+c.G+c.B), res.Scores[i])
		}
	}
}

func TestRandomColorSearch_DeterministicPerSeed(t *testing.T) {
	a, err := RandomColorSearch(channelSum, 20, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := RandomColorSearch(channelSum, 20, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := RandomColorSearch(channelSum, 20, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	assert.NotEqual(t, a.Candidates, c.Candidates)
}

func TestRandomColorSearch_MatchesDrawOrder(t *testing.T) {
	res, err := RandomColorSearch(channelSum, 10, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		want, err := RandomColor(rng, 1.0)
		require.NoError(t, err)
		assert.Equal(t, want, res.Candidates[i], "draw %d", i)
	}
}

func TestRandom_MaxPower(t *testing.T) {
	ctx := t.Context()

	res, err := NewRandom(rand.New(rand.NewSource(1)), WithMaxPower(0)).Search(ctx, channelSum, 30)
	require.NoError(t, err)
	for _, c := range res.Candidates {
		assert.Equal(t, color.Color{}, c)
	}

	res, err = NewRandom(rand.New(rand.NewSource(1)), WithMaxPower(0.5)).Search(ctx, channelSum, 200)
	require.NoError(t, err)
	for _, c := range res.Candidates {
		for _, v := range c.Channels() {
			assert.LessOrEqual(t, v, 128)
		}
	}

	for _, p := range []float64{-0.1, 1.5} {
		_, err = NewRandom(rand.New(rand.NewSource(1)), WithMaxPower(p)).Search(ctx, channelSum, 3)
		assert.ErrorIs(t, err, ErrInvalidMaxPower)
	}
}

func TestRandomColorSearch_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := RandomColorSearch(channelSum, -1, rng)
	assert.ErrorIs(t, err, ErrNegativeIterations)

	_, err = RandomColorSearch(nil, 1, rng)
	assert.ErrorIs(t, err, ErrNilEvaluate)

	_, err = RandomColorSearch(channelSum, 1, nil)
	assert.ErrorIs(t, err, ErrNilRand)

	_, err = RandomColor(nil, 1)
	assert.ErrorIs(t, err, ErrNilRand)
}

func TestRandomColorSearch_PropagatesEvaluateError(t *testing.T) {
	boom := errors.New("evaluation failed")
	res, err := RandomColorSearch(func(color.Color) (float64, error) {
		return 0, boom
	}, 4, rand.New(rand.NewSource(1)))

	assert.Nil(t, res)
	assert.Same(t, boom, err)
}
