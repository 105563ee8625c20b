package color

import (
	"errors"
	"fmt"
)

// MaxChannel is the highest power level an LED channel accepts.
const MaxChannel = 255

// ErrOutOfRange is returned when a channel value falls outside [0, MaxChannel].
var ErrOutOfRange = errors.New("channel out of range")

// Color is an RGB power-level triple. Values are plain integers so that a
// candidate produced by a search can be fed straight back into the mixer.
type Color struct {
	R int `json:"R" yaml:"R"`
	G int `json:"G" yaml:"G"`
	B int `json:"B" yaml:"B"`
}

// New returns a validated color.
func New(r, g, b int) (Color, error) {
	c := Color{R: r, G: g, B: b}
	if err := c.Validate(); err != nil {
		return Color{}, err
	}
	return c, nil
}

// Validate checks that every channel lies in [0, MaxChannel].
func (c Color) Validate() error {
	for _, ch := range []struct {
		name  string
		value int
	}{{"R", c.R}, {"G", c.G}, {"B", c.B}} {
		if ch.value < 0 || ch.value > MaxChannel {
			return fmt.Errorf("%w: %s=%d", ErrOutOfRange, ch.name, ch.value)
		}
	}
	return nil
}

// Channels returns the channels in R, G, B order.
func (c Color) Channels() [3]int {
	return [3]int{c.R, c.G, c.B}
}

func (c Color) String() string {
	return fmt.Sprintf("(R=%d, G=%d, B=%d)", c.R, c.G, c.B)
}
