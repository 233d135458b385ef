package analysis

// SectionCategory labels a structural span of a track.
type SectionCategory string

const (
	SectionIntro     SectionCategory = "intro"
	SectionVerse     SectionCategory = "verse"
	SectionChorus    SectionCategory = "chorus"
	SectionBreakdown SectionCategory = "breakdown"
	SectionOutro     SectionCategory = "outro"
	SectionMain      SectionCategory = "main"
)

// SongSection is one classified span of a track. Sections are contiguous and
// cover [0, duration].
type SongSection struct {
	Category SectionCategory
	Start    float64 // seconds
	End      float64 // seconds
	Energy   float64 // 0-1
	IsVocal  bool
}

// Result holds everything the mix engine needs to know about one track.
// Immutable after creation.
type Result struct {
	BPM    float64
	Key    string // Camelot notation, "1A".."12B"
	Energy float64

	Beats            []float64 // strictly increasing beat instants, seconds
	PhraseBoundaries []float64 // first element always 0

	IntroEnd   float64
	OutroStart float64

	Sections []SongSection

	BestLoopStart float64
	BestLoopEnd   float64
	DropTime      *float64 // nil when no qualifying energy transient exists

	Duration float64

	// Degraded marks a result built from conservative defaults because the
	// input was too short to analyze.
	Degraded bool
}

// degradedResult fills a Result with the documented defaults for a track of
// the given duration.
func degradedResult(duration float64) *Result {
	return &Result{
		BPM:              DefaultBPM,
		Key:              DefaultKey,
		Energy:           DefaultEnergy,
		Beats:            nil,
		PhraseBoundaries: []float64{0.0},
		IntroEnd:         duration * 0.1,
		OutroStart:       duration * 0.9,
		Sections: []SongSection{{
			Category: SectionMain,
			Start:    0,
			End:      duration,
			Energy:   DefaultEnergy,
			IsVocal:  false,
		}},
		BestLoopStart: 0,
		BestLoopEnd:   duration,
		Duration:      duration,
		Degraded:      true,
	}
}
