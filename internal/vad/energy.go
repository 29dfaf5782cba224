// SPDX-License-Identifier: MIT
// Package vad implements energy-based voice activity detection. Each chunk
// is windowed, transformed with a real FFT, and the normalized energy in
// the speech band is compared against a configurable threshold.
package vad

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/Pierrekw/voiceinput/internal/audio"
	"github.com/Pierrekw/voiceinput/internal/config"
	"github.com/Pierrekw/voiceinput/pkg/bitint"
)

// Speech band bounds in Hz. Telephone-band voice energy concentrates here;
// energy outside the band (hum, hiss) does not count as activity.
const (
	speechBandLow  = 300.0
	speechBandHigh = 3400.0
)

// Detector decides whether a chunk contains voice. It pre-allocates all FFT
// buffers and is not safe for concurrent use: exactly one worker owns it.
type Detector struct {
	windowSize int
	sampleRate float64
	threshold  float64

	fftObj *fourier.FFT
	input  []float64    // windowed, scaled samples
	coeffs []complex128 // FFT output bins

	loBin, hiBin int
}

// NewDetector builds a detector for the session sample rate. The window
// size must be a power of 2 and no detector state is shared between
// sessions.
func NewDetector(cfg config.VADConfig, sampleRate int) (*Detector, error) {
	if !bitint.IsPowerOfTwo(cfg.WindowSize) {
		return nil, fmt.Errorf("vad window size must be a power of 2, got %d", cfg.WindowSize)
	}

	d := &Detector{
		windowSize: cfg.WindowSize,
		sampleRate: float64(sampleRate),
		threshold:  cfg.Threshold,
		fftObj:     fourier.NewFFT(cfg.WindowSize),
		input:      make([]float64, cfg.WindowSize),
		coeffs:     make([]complex128, cfg.WindowSize/2+1),
	}

	binWidth := d.sampleRate / float64(d.windowSize)
	d.loBin = int(speechBandLow / binWidth)
	d.hiBin = int(speechBandHigh / binWidth)
	if d.hiBin > d.windowSize/2 {
		d.hiBin = d.windowSize / 2
	}
	if d.loBin >= d.hiBin {
		return nil, fmt.Errorf("vad window size %d too small for sample rate %d", cfg.WindowSize, sampleRate)
	}

	return d, nil
}

// Active reports whether the chunk carries speech-band energy above the
// threshold. Chunks shorter than the analysis window are treated as silent.
func (d *Detector) Active(chunk *audio.Chunk) bool {
	if chunk.Empty() || len(chunk.Data) < d.windowSize {
		return false
	}

	// Scale into [-1, 1] and apply the Hann window in place.
	for i := 0; i < d.windowSize; i++ {
		d.input[i] = float64(chunk.Data[i]) / float64(math.MaxInt16)
	}
	window.Hann(d.input)

	d.fftObj.Coefficients(d.coeffs, d.input)

	var bandEnergy float64
	for bin := d.loBin; bin <= d.hiBin; bin++ {
		mag := cmplx.Abs(d.coeffs[bin]) / float64(d.windowSize)
		bandEnergy += mag * mag
	}

	return bandEnergy > d.threshold
}

// Threshold returns the configured energy threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}
