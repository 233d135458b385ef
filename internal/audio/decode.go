package audio

import (
	"errors"
	"fmt"
	"unsafe"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

// DecodeFile decodes an audio file into a Waveform at the requested sample
// rate and channel count. Decoding runs through an FFmpeg filter graph
// (aresample + aformat) so any input format and layout is accepted.
// Failures are reported as *DecodeError.
func DecodeFile(path string, rate, channels int) (*Waveform, error) {
	reader, _, err := OpenAudioFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer reader.Close()

	layout := "mono"
	if channels == 2 {
		layout = "stereo"
	}
	filterSpec := fmt.Sprintf(
		"aresample=%d,aformat=sample_fmts=flt:sample_rates=%d:channel_layouts=%s",
		rate, rate, layout,
	)

	filterGraph, bufferSrcCtx, bufferSinkCtx, err := setupFilterGraph(reader.GetDecoderContext(), filterSpec)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer ffmpeg.AVFilterGraphFree(&filterGraph)

	out := &Waveform{Rate: rate, Channels: channels}

	filteredFrame := ffmpeg.AVFrameAlloc()
	if filteredFrame == nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to allocate frame")}
	}
	defer ffmpeg.AVFrameFree(&filteredFrame)

	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}

		if frame == nil {
			// EOF: flush the filter graph
			if _, err := ffmpeg.AVBuffersrcAddFrameFlags(bufferSrcCtx, nil, 0); err != nil {
				return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to flush filter graph: %w", err)}
			}
		} else {
			if _, err := ffmpeg.AVBuffersrcAddFrameFlags(bufferSrcCtx, frame, 0); err != nil {
				return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to feed filter graph: %w", err)}
			}
		}

		// Drain all available filtered frames
		drained := false
		for {
			if _, err := ffmpeg.AVBuffersinkGetFrame(bufferSinkCtx, filteredFrame); err != nil {
				if errors.Is(err, ffmpeg.EAgain) {
					break
				}
				if errors.Is(err, ffmpeg.AVErrorEOF) {
					drained = true
					break
				}
				return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to pull filtered frame: %w", err)}
			}
			appendFrameSamples(out, filteredFrame)
			ffmpeg.AVFrameUnref(filteredFrame)
		}

		if frame == nil || drained {
			break
		}
	}

	if out.Frames() == 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("no audio samples decoded")}
	}

	return out, nil
}

// appendFrameSamples copies a packed-float frame's samples into the waveform.
// The filter graph guarantees flt output, so the first data plane holds all
// channels interleaved.
func appendFrameSamples(w *Waveform, frame *ffmpeg.AVFrame) {
	nbSamples := frame.NbSamples()
	nbChannels := frame.ChLayout().NbChannels()
	if nbSamples == 0 || nbChannels == 0 {
		return
	}

	dataPtr := frame.Data().Get(0)
	if dataPtr == nil {
		return
	}

	samples := unsafe.Slice((*float32)(dataPtr), int(nbSamples)*int(nbChannels))
	for _, s := range samples {
		w.Samples = append(w.Samples, float64(s))
	}
}
