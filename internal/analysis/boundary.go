package analysis

// detectBoundaries finds where the intro ends and the outro begins: the
// first and last crossings of a 40%-of-max threshold over the smoothed
// onset curve, offset by half the smoothing window and snapped to the beat
// grid. Results are clamped so a mix never cuts in before the fifth beat or
// out after the eighth-from-last.
func detectBoundaries(onset []float64, frameRate float64, beats []float64, duration float64) (introEnd, outroStart float64) {
	if len(beats) < 16 || len(onset) == 0 {
		return duration * 0.1, duration * 0.9
	}

	window := int(BoundarySmoothSeconds * frameRate)
	if window < 1 {
		window = 1
	}
	smooth := movingAverage(onset, window)

	maxVal := 0.0
	for _, v := range smooth {
		if v > maxVal {
			maxVal = v
		}
	}
	threshold := maxVal * BoundaryThresholdRatio

	introFrame := 0
	for i, v := range smooth {
		if v > threshold {
			introFrame = i - window/2
			if introFrame < 0 {
				introFrame = 0
			}
			break
		}
	}

	outroFrame := len(smooth) - 1
	for i := len(smooth) - 1; i >= 0; i-- {
		if smooth[i] > threshold {
			outroFrame = i + window/2
			if outroFrame > len(smooth)-1 {
				outroFrame = len(smooth) - 1
			}
			break
		}
	}

	introEnd = snapToBeat(float64(introFrame)/frameRate, beats)
	outroStart = snapToBeat(float64(outroFrame)/frameRate, beats)

	// At least a bar in, at least two bars from the end
	minIntro := duration * 0.05
	if len(beats) > 4 {
		minIntro = beats[4]
	}
	if introEnd < minIntro {
		introEnd = minIntro
	}

	maxOutro := duration * 0.95
	if len(beats) > 8 {
		maxOutro = beats[len(beats)-8]
	}
	if outroStart > maxOutro {
		outroStart = maxOutro
	}

	if introEnd >= outroStart {
		introEnd = duration * 0.05
		outroStart = duration * 0.95
	}

	return introEnd, outroStart
}
