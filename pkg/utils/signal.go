package utils

import "math"

// GenerateSineWave produces size samples of a pure tone at the given
// frequency and amplitude (0..1 of full scale). Used by tests and the
// synthetic capture path.
func GenerateSineWave(size, sampleRate int, frequency, amplitude float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		t := float64(i) / float64(sampleRate)
		buffer[i] = int16(math.Sin(2*math.Pi*frequency*t) * math.MaxInt16 * amplitude)
	}
	return buffer
}

// GenerateComplexWave produces a 440Hz fundamental with two harmonics,
// a closer stand-in for voiced audio than a pure tone.
func GenerateComplexWave(size, sampleRate int) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		tm := float64(i) / float64(sampleRate)
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int16(signal * math.MaxInt16 * 0.9)
	}
	return buffer
}
