// Package smoothing implements the trailing moving-average filter applied
// to raw volume series before consumption is derived.
package smoothing

// DefaultWindow is the reference filter width.
const DefaultWindow = 10

// MovingAverage returns a series of the same length where each element is
// the arithmetic mean of up to the last window raw values ending at that
// position. The leading elements average a shorter prefix; there is no
// padding. A window of 1 (or less) returns a copy of the input.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if window < 1 {
		window = 1
	}

	// Sliding sum; equivalent to averaging the slice [i-window+1, i]
	// directly, including the short-prefix positions.
	var sum float64
	for i, v := range values {
		sum += v
		n := window
		if i >= window {
			sum -= values[i-window]
		} else {
			n = i + 1
		}
		out[i] = sum / float64(n)
	}
	return out
}
