// Package sensor simulates an RGB light mixer observed by an eight-band
// spectral sensor.
//
// Each LED channel contributes to every band through a fixed coefficient:
// red dominates the long wavelengths, green the middle and blue the short
// ones. Readings carry multiplicative Gaussian noise.
package sensor

import (
	"fmt"
	"sort"
)

// Wavelengths are the representative band centers in nanometers.
var Wavelengths = [8]int{410, 440, 470, 510, 550, 583, 620, 670}

var (
	redCoefficients   = [8]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.9, 1.0}
	greenCoefficients = [8]float64{0.2, 0.4, 0.6, 0.8, 1.0, 0.8, 0.4, 0.2}
	blueCoefficients  = [8]float64{0.9, 1.0, 0.8, 0.6, 0.4, 0.2, 0.1, 0.0}
)

// Coefficients returns the per-band response of the red, green and blue LEDs.
func Coefficients() (red, green, blue [8]float64) {
	return redCoefficients, greenCoefficients, blueCoefficients
}

// Label returns the reading key for a wavelength, e.g. "ch410".
func Label(wavelength int) string {
	return fmt.Sprintf("ch%d", wavelength)
}

var labels = func() [8]string {
	var out [8]string
	for i, w := range Wavelengths {
		out[i] = Label(w)
	}
	return out
}()

// Labels returns the reading keys in wavelength order.
func Labels() []string {
	return append([]string(nil), labels[:]...)
}

// Reading maps a band label to its measured intensity.
type Reading map[string]float64

// Clone returns an independent copy of the reading.
func (r Reading) Clone() Reading {
	out := make(Reading, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SortedLabels returns the reading's keys in ascending order.
func (r Reading) SortedLabels() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
