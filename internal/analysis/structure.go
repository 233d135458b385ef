package analysis

// segmentStructure classifies every 32-beat phrase by position first, then
// by a weighted blend of normalized RMS and spectral centroid. Tracks with
// fewer than two phrase boundaries collapse to a single main section.
func segmentStructure(feats frameFeatures, frameRate float64, phrases []float64, duration, overallEnergy float64) []SongSection {
	if len(phrases) < 2 {
		return []SongSection{{
			Category: SectionMain,
			Start:    0,
			End:      duration,
			Energy:   overallEnergy,
			IsVocal:  false,
		}}
	}

	rmsNorm := minMaxNormalize(feats.rms)
	centroidNorm := minMaxNormalize(feats.centroid)

	combined := make([]float64, len(rmsNorm))
	for i := range combined {
		combined[i] = StructureRMSWeight*rmsNorm[i] + StructureCentroidWeight*centroidNorm[i]
	}

	var sections []SongSection
	for i := range phrases {
		start := phrases[i]
		end := duration
		if i+1 < len(phrases) {
			end = phrases[i+1]
		}

		startFrame := int(start * frameRate)
		endFrame := int(end * frameRate)
		if endFrame > len(combined) {
			endFrame = len(combined)
		}
		if endFrame <= startFrame {
			continue
		}

		sum := 0.0
		for _, v := range combined[startFrame:endFrame] {
			sum += v
		}
		energy := sum / float64(endFrame-startFrame)

		category := classifySection(start/duration, energy)
		sections = append(sections, SongSection{
			Category: category,
			Start:    start,
			End:      end,
			Energy:   energy,
			IsVocal:  category == SectionVerse || category == SectionChorus,
		})
	}

	if len(sections) == 0 {
		return []SongSection{{
			Category: SectionMain,
			Start:    0,
			End:      duration,
			Energy:   overallEnergy,
			IsVocal:  false,
		}}
	}

	return sections
}

// classifySection applies the position-then-energy rules: the opening tenth
// is intro, the final 15% outro, then energy decides chorus/verse/breakdown.
func classifySection(relativePos, energy float64) SectionCategory {
	switch {
	case relativePos < IntroPositionRatio:
		return SectionIntro
	case relativePos > OutroPositionRatio:
		return SectionOutro
	case energy > ChorusEnergyThreshold:
		return SectionChorus
	case energy > VerseEnergyThreshold:
		return SectionVerse
	default:
		return SectionBreakdown
	}
}

// minMaxNormalize scales a curve to [0, 1]. A flat curve maps to zeros.
func minMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	span := hi - lo + 1e-6
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}
