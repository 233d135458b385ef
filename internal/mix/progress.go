package mix

// Render stages, in pipeline order. UI layers key their status lines off
// these names.
const (
	StageAnalyzing  = "analyzing"
	StageStretching = "stretching"
	StageMixing     = "mixing"
	StageExporting  = "exporting"
)

// ProgressFunc receives discrete render milestones. Implementations must be
// fast; the pipeline calls them inline.
type ProgressFunc func(stage string, percent int, detail string)

// emit reports progress when a callback is configured.
func (p ProgressFunc) emit(stage string, percent int, detail string) {
	if p != nil {
		p(stage, percent, detail)
	}
}
