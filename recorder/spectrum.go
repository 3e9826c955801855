package recorder

import (
	"encoding/binary"
	"math"
)

const (
	// SpectrumBins is the number of frequency bars in a visualization
	// frame.
	SpectrumBins = 32
	// spectrumWindow is how many samples feed one frame.
	spectrumWindow = 256
	// spectrumGain lifts speech-level magnitudes into the visible range.
	spectrumGain = 4.0
)

// analyzer accumulates capture samples and produces one frame of
// normalized per-bin amplitudes for every full window.
type analyzer struct {
	window []float64
}

func newAnalyzer() *analyzer {
	return &analyzer{window: make([]float64, 0, spectrumWindow)}
}

// Process consumes s16le PCM and returns a frame per completed window,
// nil while a window is still filling.
func (a *analyzer) Process(pcm []byte) [][]float64 {
	var frames [][]float64
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		a.window = append(a.window, float64(sample)/32768.0)
		if len(a.window) == spectrumWindow {
			frames = append(frames, spectrumBins(a.window, SpectrumBins))
			a.window = a.window[:0]
		}
	}
	return frames
}

// spectrumBins computes the magnitude of evenly spaced frequency bins
// over the window via a direct DFT, scaled and clamped to 0..1.
func spectrumBins(window []float64, bins int) []float64 {
	n := len(window)
	out := make([]float64, bins)
	// Bin k probes DFT index (k+1)*n/2/bins, spreading the bars across
	// the band up to Nyquist.
	for k := 0; k < bins; k++ {
		idx := (k + 1) * (n / 2) / bins
		omega := 2 * math.Pi * float64(idx) / float64(n)
		var re, im float64
		for t, s := range window {
			re += s * math.Cos(omega*float64(t))
			im -= s * math.Sin(omega*float64(t))
		}
		mag := 2 * math.Hypot(re, im) / float64(n)
		v := mag * spectrumGain
		if v > 1 {
			v = 1
		}
		out[k] = v
	}
	return out
}
