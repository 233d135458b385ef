package analysis

// selectLoopWindow picks the contiguous window of a track worth playing in a
// mix. Strategy: locate the drop (steepest short-term rise of smoothed RMS),
// start eight bars before it for the buildup; without a usable drop, fall
// back to duration-tiered positions. The window targets 75 seconds, snapped
// to the beat grid on both ends.
func selectLoopWindow(rms []float64, frameRate float64, beats []float64, bpm, duration float64) (start, end float64, drop *float64) {
	if duration < MinSectionSeconds+10 {
		return 0, duration, nil
	}

	window := min(50, len(rms)/10)
	if window < 3 {
		window = 3
	}
	smooth := movingAverage(rms, window)

	drop = findDrop(smooth, frameRate)

	secondsPerBar := 60.0 / bpm * BeatsPerBar

	if drop != nil && *drop > 10 {
		start = *drop - DropBuildupBars*secondsPerBar
		if start < 0 {
			start = 0
		}
	} else {
		// Conservative structure heuristic: skip the intro, land before the
		// first big section
		switch {
		case duration > 180:
			start = min(duration*0.15, 45)
		case duration > 120:
			start = min(duration*0.2, 35)
		default:
			start = max(duration*0.1, 10)
		}
	}

	if maxStart := duration - MinSectionSeconds; start > maxStart {
		start = maxStart
	}
	if start < 5 {
		start = 5
	}
	start = snapToBeat(start, beats)

	end = min(duration-5, start+TargetWindowSeconds)
	if end > duration {
		end = duration
		start = max(0, end-TargetWindowSeconds)
	}
	end = snapToBeat(end, beats)

	if end-start < MinPlayableSeconds {
		end = min(duration, start+ShortWindowExtension)
	}

	return start, end, drop
}

// findDrop scores every instant by the mean smoothed RMS of the two seconds
// after it minus the two seconds before it. The best positive score counts
// as a drop only when it clears 10% of the curve's maximum.
func findDrop(smooth []float64, frameRate float64) *float64 {
	dropWindow := int(DropWindowSeconds * frameRate)
	if dropWindow < 1 || len(smooth) <= 2*dropWindow {
		return nil
	}

	maxVal := 0.0
	for _, v := range smooth {
		if v > maxVal {
			maxVal = v
		}
	}

	bestIncrease := 0.0
	bestFrame := -1
	for i := dropWindow; i < len(smooth)-dropWindow; i++ {
		before := mean(smooth[i-dropWindow : i])
		after := mean(smooth[i : i+dropWindow])
		if increase := after - before; increase > bestIncrease {
			bestIncrease = increase
			bestFrame = i
		}
	}

	if bestFrame < 0 || bestIncrease <= DropThresholdRatio*maxVal {
		return nil
	}

	t := float64(bestFrame) / frameRate
	return &t
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
