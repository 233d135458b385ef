package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/deckmix/deckmix/internal/audio"
)

// Analyzer extracts the full feature set from one track at a time. It owns
// FFT plans and window tables, so it is not safe for concurrent use: the
// worker pool creates one Analyzer per worker.
type Analyzer struct {
	fft       *fourier.FFT
	chromaFFT *fourier.FFT

	window       []float64
	chromaWindow []float64

	// Logf receives debug output when set.
	Logf func(format string, args ...any)
}

// NewAnalyzer creates an analyzer with freshly planned FFTs.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		fft:          fourier.NewFFT(FrameSize),
		chromaFFT:    fourier.NewFFT(ChromaFrameSize),
		window:       hannWindow(FrameSize),
		chromaWindow: hannWindow(ChromaFrameSize),
	}
}

func (a *Analyzer) logf(format string, args ...any) {
	if a.Logf != nil {
		a.Logf(format, args...)
	}
}

// Analyze runs the full extraction pipeline on an analysis-rate mono
// waveform. Tracks too short to analyze yield a degraded result with
// documented defaults rather than an error.
func (a *Analyzer) Analyze(w *audio.Waveform) *Result {
	duration := w.Duration()
	if duration < MinAnalysisSeconds {
		a.logf("analysis degraded: %.2fs input below %.0fs minimum", duration, MinAnalysisSeconds)
		return degradedResult(duration)
	}

	samples := w.Samples
	if w.Channels > 1 {
		samples = w.Mono().Samples
	}
	rate := w.Rate
	frameRate := float64(rate) / float64(HopSize)

	feats := a.analyzeFrames(samples, rate)

	bpm := estimateTempo(feats.onset, frameRate)
	beats := trackBeats(feats.onset, bpm, frameRate, duration)
	phrases := phraseBoundaries(beats)

	key := a.detectKey(samples, rate)
	energy := trackEnergy(feats.rms)

	introEnd, outroStart := detectBoundaries(feats.onset, frameRate, beats, duration)
	sections := segmentStructure(feats, frameRate, phrases, duration, energy)
	loopStart, loopEnd, drop := selectLoopWindow(feats.rms, frameRate, beats, bpm, duration)

	a.logf("analyzed %.1fs: bpm=%.1f key=%s energy=%.2f beats=%d drop=%v",
		duration, bpm, key, energy, len(beats), drop != nil)

	return &Result{
		BPM:              bpm,
		Key:              key,
		Energy:           energy,
		Beats:            beats,
		PhraseBoundaries: phrases,
		IntroEnd:         introEnd,
		OutroStart:       outroStart,
		Sections:         sections,
		BestLoopStart:    loopStart,
		BestLoopEnd:      loopEnd,
		DropTime:         drop,
		Duration:         duration,
	}
}

// frameFeatures holds the per-frame curves that downstream heuristics share.
// All three use the FrameSize/HopSize grid.
type frameFeatures struct {
	onset    []float64 // spectral flux
	rms      []float64
	centroid []float64 // Hz
}

// analyzeFrames computes onset strength, RMS and spectral centroid in a
// single pass over the track so the spectrum of each frame is taken once.
func (a *Analyzer) analyzeFrames(samples []float64, rate int) frameFeatures {
	numFrames := 0
	if len(samples) >= FrameSize {
		numFrames = (len(samples)-FrameSize)/HopSize + 1
	}

	feats := frameFeatures{
		onset:    make([]float64, 0, numFrames),
		rms:      make([]float64, 0, numFrames),
		centroid: make([]float64, 0, numFrames),
	}

	buf := make([]float64, FrameSize)
	coeffs := make([]complex128, FrameSize/2+1)
	prevMag := make([]float64, FrameSize/2+1)
	mag := make([]float64, FrameSize/2+1)

	for f := 0; f < numFrames; f++ {
		offset := f * HopSize
		frame := samples[offset : offset+FrameSize]

		sumSquares := 0.0
		for i, s := range frame {
			buf[i] = s * a.window[i]
			sumSquares += s * s
		}
		feats.rms = append(feats.rms, math.Sqrt(sumSquares/float64(FrameSize)))

		coeffs = a.fft.Coefficients(coeffs, buf)

		flux := 0.0
		magSum := 0.0
		weighted := 0.0
		for k, c := range coeffs {
			m := cmplx.Abs(c)
			mag[k] = m
			if d := m - prevMag[k]; d > 0 {
				flux += d
			}
			magSum += m
			weighted += float64(k) * m
		}
		feats.onset = append(feats.onset, flux)

		centroidHz := 0.0
		if magSum > 0 {
			centroidHz = weighted / magSum * float64(rate) / FrameSize
		}
		feats.centroid = append(feats.centroid, centroidHz)

		prevMag, mag = mag, prevMag
	}

	// First frame has no predecessor for flux
	if len(feats.onset) > 0 {
		feats.onset[0] = 0
	}

	return feats
}

// estimateTempo picks the global tempo by autocorrelating the onset curve
// over the 60-200 BPM lag range, weighted by a prior centred on 120 BPM.
func estimateTempo(onset []float64, frameRate float64) float64 {
	if len(onset) == 0 {
		return DefaultBPM
	}

	minLag := int(60.0 * frameRate / MaxTempoBPM)
	maxLag := int(60.0 * frameRate / MinTempoBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if maxLag < minLag {
		return DefaultBPM
	}

	bestScore := math.Inf(-1)
	bestBPM := DefaultBPM
	for lag := minLag; lag <= maxLag; lag++ {
		ac := 0.0
		for i := 0; i+lag < len(onset); i++ {
			ac += onset[i] * onset[i+lag]
		}
		bpm := 60.0 * frameRate / float64(lag)
		dev := (bpm - TempoPriorCenter) / TempoPriorWidth
		weight := 0.8 + 0.2*math.Exp(-0.5*dev*dev)
		if score := ac * weight; score > bestScore {
			bestScore = score
			bestBPM = bpm
		}
	}

	return bestBPM
}

// trackBeats places beat instants by dynamic programming: each frame's score
// is its onset strength plus the best predecessor score minus a penalty that
// grows with squared log deviation from the expected beat period.
func trackBeats(onset []float64, bpm, frameRate, duration float64) []float64 {
	n := len(onset)
	if n == 0 || bpm <= 0 {
		return nil
	}

	period := 60.0 * frameRate / bpm
	if period < 1 {
		return nil
	}

	// Normalize so the transition penalty operates on a stable scale
	maxOnset := 0.0
	for _, v := range onset {
		if v > maxOnset {
			maxOnset = v
		}
	}
	norm := make([]float64, n)
	if maxOnset > 0 {
		for i, v := range onset {
			norm[i] = v / maxOnset
		}
	}

	cumScore := make([]float64, n)
	backlink := make([]int, n)
	for i := range backlink {
		backlink[i] = -1
	}

	lo := int(math.Round(period / 2))
	hi := int(math.Round(period * 2))

	for i := 0; i < n; i++ {
		cumScore[i] = norm[i]
		best := math.Inf(-1)
		bestJ := -1
		for gap := lo; gap <= hi; gap++ {
			j := i - gap
			if j < 0 {
				break
			}
			dev := math.Log(float64(gap) / period)
			score := cumScore[j] - BeatTightness*dev*dev
			if score > best {
				best = score
				bestJ = j
			}
		}
		if bestJ >= 0 {
			cumScore[i] += best
			backlink[i] = bestJ
		}
	}

	// Backtrack from the best-scoring tail frame
	tail := 0
	for i := 1; i < n; i++ {
		if cumScore[i] > cumScore[tail] {
			tail = i
		}
	}

	var frames []int
	for i := tail; i >= 0; i = backlink[i] {
		frames = append(frames, i)
		if backlink[i] < 0 {
			break
		}
	}

	beats := make([]float64, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		t := float64(frames[i]) / frameRate
		if t > duration {
			t = duration
		}
		if len(beats) > 0 && t <= beats[len(beats)-1] {
			continue
		}
		beats = append(beats, t)
	}

	return beats
}

// phraseBoundaries marks every 32nd beat, always starting at zero. Tracks
// with fewer than 32 beats yield only the origin.
func phraseBoundaries(beats []float64) []float64 {
	boundaries := []float64{0.0}
	for i := BeatsPerPhrase; i < len(beats); i += BeatsPerPhrase {
		boundaries = append(boundaries, beats[i])
	}
	return boundaries
}

// trackEnergy maps mean RMS to [0, 1] with the fixed gain constant.
func trackEnergy(rms []float64) float64 {
	if len(rms) == 0 {
		return DefaultEnergy
	}
	sum := 0.0
	for _, v := range rms {
		sum += v
	}
	energy := sum / float64(len(rms)) * EnergyGain
	if energy > 1.0 {
		energy = 1.0
	}
	return energy
}

// snapToBeat returns the beat instant nearest to t, or t itself when no
// beats exist.
func snapToBeat(t float64, beats []float64) float64 {
	if len(beats) == 0 {
		return t
	}
	best := beats[0]
	bestDist := math.Abs(t - best)
	for _, b := range beats[1:] {
		if d := math.Abs(t - b); d < bestDist {
			bestDist = d
			best = b
		}
	}
	return best
}

// movingAverage smooths a curve with a centred box window, matching the
// behaviour of a same-length convolution.
func movingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	half := window / 2
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i - half + window
		if hi > len(values) {
			hi = len(values)
		}
		sum := 0.0
		for j := lo; j < hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
