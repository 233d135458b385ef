// Package analysis extracts tempo, key, energy and structural metadata from
// decoded waveforms. All analysis runs on the mono 22.05 kHz copy of a track.
package analysis

// STFT geometry. Onset strength, RMS and spectral centroid share one frame
// grid; chroma uses a longer window for pitch resolution.
const (
	FrameSize = 2048
	HopSize   = 512

	ChromaFrameSize = 4096
	ChromaHopSize   = 2048
)

// Chroma mapping bounds and reference. Bins outside the range carry mostly
// percussion and air, which smear the pitch-class profile.
const (
	ChromaMinHz = 65.0
	ChromaMaxHz = 4000.0
	ChromaRefHz = 261.63 // C4
)

// Tempo search range and the perceptual prior centred on 120 BPM.
const (
	MinTempoBPM = 60.0
	MaxTempoBPM = 200.0

	TempoPriorCenter = 120.0
	TempoPriorWidth  = 40.0

	// Beat tracker penalty weight for deviating from the estimated period.
	BeatTightness = 100.0
)

// Grid units: 4 beats to the bar, 8 bars to the phrase.
const (
	BeatsPerBar    = 4
	BeatsPerPhrase = 32
)

// Energy scaling: mean RMS of typical masters sits well below 0.1, so a
// fixed gain maps it onto [0, 1] with a hard clamp.
const EnergyGain = 10.0

// Structure classification weights and thresholds.
const (
	StructureRMSWeight      = 0.6
	StructureCentroidWeight = 0.4

	ChorusEnergyThreshold = 0.7
	VerseEnergyThreshold  = 0.5

	IntroPositionRatio = 0.10
	OutroPositionRatio = 0.85
)

// Intro/outro boundary detection.
const (
	BoundarySmoothSeconds  = 4.0
	BoundaryThresholdRatio = 0.40
)

// Loop-window selection.
const (
	DropWindowSeconds  = 2.0
	DropThresholdRatio = 0.10
	DropBuildupBars    = 8

	MinSectionSeconds    = 45.0
	MaxSectionSeconds    = 90.0
	TargetWindowSeconds  = 75.0
	MinPlayableSeconds   = 30.0
	ShortWindowExtension = 45.0
)

// Conservative defaults substituted when a track is too short for meaningful
// onset/chroma analysis. Degraded, not an error.
const (
	DefaultBPM    = 120.0
	DefaultKey    = "1A"
	DefaultEnergy = 0.5

	// Minimum input length for full analysis.
	MinAnalysisSeconds = 5.0
)
