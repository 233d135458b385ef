package analysis

import (
	"math"
	"math/cmplx"
)

// Camelot positions by pitch class (C=0 .. B=11). One table per mode; the
// pair must stay in lockstep with CamelotDistance so compatibility checks
// remain stable.
var (
	majorCamelot = [12]string{
		"8B", "3B", "10B", "5B", "12B", "7B", "2B", "9B", "4B", "11B", "6B", "1B",
	}
	minorCamelot = [12]string{
		"5A", "12A", "7A", "2A", "9A", "4A", "11A", "6A", "1A", "8A", "3A", "10A",
	}
)

// detectKey estimates the Camelot key from a whole-track averaged chroma
// profile. The dominant pitch class is the tonal centre; the minor-third
// versus major-third energy above it decides the mode. A crude heuristic,
// but deterministic and good enough for harmonic mixing hints.
func (a *Analyzer) detectKey(samples []float64, rate int) string {
	chroma := a.chromaProfile(samples, rate)
	return keyFromChroma(chroma)
}

// keyFromChroma maps an averaged 12-bin chroma profile to Camelot notation.
func keyFromChroma(chroma [12]float64) string {
	dominant := 0
	for i := 1; i < 12; i++ {
		if chroma[i] > chroma[dominant] {
			dominant = i
		}
	}

	minorThird := chroma[(dominant+3)%12]
	majorThird := chroma[(dominant+4)%12]

	if minorThird > majorThird {
		// Report the relative minor of the detected centre
		return minorCamelot[(dominant+9)%12]
	}
	return majorCamelot[dominant]
}

// chromaProfile accumulates spectral magnitude into pitch classes over the
// whole track. Only bins between ChromaMinHz and ChromaMaxHz contribute.
func (a *Analyzer) chromaProfile(samples []float64, rate int) [12]float64 {
	var chroma [12]float64

	numFrames := 0
	if len(samples) >= ChromaFrameSize {
		numFrames = (len(samples)-ChromaFrameSize)/ChromaHopSize + 1
	}
	if numFrames == 0 {
		return chroma
	}

	// Pitch class per FFT bin is fixed for the whole track
	binClass := make([]int, ChromaFrameSize/2+1)
	for k := range binClass {
		binClass[k] = -1
		freq := float64(k) * float64(rate) / ChromaFrameSize
		if freq < ChromaMinHz || freq > ChromaMaxHz {
			continue
		}
		semitone := int(math.Round(12 * math.Log2(freq/ChromaRefHz)))
		binClass[k] = ((semitone % 12) + 12) % 12
	}

	buf := make([]float64, ChromaFrameSize)
	coeffs := make([]complex128, ChromaFrameSize/2+1)

	for f := 0; f < numFrames; f++ {
		offset := f * ChromaHopSize
		frame := samples[offset : offset+ChromaFrameSize]
		for i, s := range frame {
			buf[i] = s * a.chromaWindow[i]
		}

		coeffs = a.chromaFFT.Coefficients(coeffs, buf)
		for k, c := range coeffs {
			if binClass[k] < 0 {
				continue
			}
			chroma[binClass[k]] += cmplx.Abs(c)
		}
	}

	for i := range chroma {
		chroma[i] /= float64(numFrames)
	}
	return chroma
}
