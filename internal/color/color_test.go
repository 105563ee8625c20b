package color

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Color
		wantErr bool
	}{
		{"black", Color{0, 0, 0}, false},
		{"white", Color{255, 255, 255}, false},
		{"negative red", Color{-1, 0, 0}, true},
		{"green too high", Color{0, 256, 0}, true},
		{"blue too high", Color{0, 0, 300}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New(255, 127, 63)
	require.NoError(t, err)
	assert.Equal(t, [3]int{255, 127, 63}, c.Channels())

	_, err = New(0, 0, 256)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestJSONKeys(t *testing.T) {
	data, err := json.Marshal(Color{R: 1, G: 2, B: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"R":1,"G":2,"B":3}`, string(data))
}
