// Package mix assembles analyzed tracks into one continuous render: tempo
// normalization, the sequential transition fold, and export.
package mix

// EffectType names one of the four supported inter-track transitions. The
// set is closed; every switch over it is exhaustive with no default pass-through.
type EffectType int

const (
	EffectCrossfade EffectType = iota
	EffectEchoOut
	EffectFilterSweep
	EffectBackspin
)

func (t EffectType) String() string {
	switch t {
	case EffectCrossfade:
		return "crossfade"
	case EffectEchoOut:
		return "echo_out"
	case EffectFilterSweep:
		return "filter_sweep"
	case EffectBackspin:
		return "backspin"
	}
	return "unknown"
}

// SweepDirection selects the filter type for filter_sweep transitions.
type SweepDirection int

const (
	SweepLowpass SweepDirection = iota
	SweepHighpass
)

func (d SweepDirection) String() string {
	if d == SweepHighpass {
		return "highpass"
	}
	return "lowpass"
}

// Directive describes the transition to apply after a track.
type Directive struct {
	Type      EffectType
	Bars      int
	Direction SweepDirection
}

// DefaultBars is the transition length used when a directive is missing or
// carries a non-positive bar count.
const DefaultBars = 8

// DefaultDirective is the fallback for invalid or missing directives.
func DefaultDirective() Directive {
	return Directive{Type: EffectCrossfade, Bars: DefaultBars, Direction: SweepLowpass}
}

// ParseDirective validates the externally supplied transition fields,
// substituting defaults for anything unrecognized.
func ParseDirective(effectType string, bars int, direction string) Directive {
	d := DefaultDirective()

	switch effectType {
	case "crossfade":
		d.Type = EffectCrossfade
	case "echo_out":
		d.Type = EffectEchoOut
	case "filter_sweep":
		d.Type = EffectFilterSweep
	case "backspin":
		d.Type = EffectBackspin
	}

	if bars > 0 {
		d.Bars = bars
	}

	if direction == "highpass" {
		d.Direction = SweepHighpass
	}

	return d
}
