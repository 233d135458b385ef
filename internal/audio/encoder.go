package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

// MP3 encode settings. libmp3lame consumes fixed 1152-sample frames and we
// feed it planar 16-bit via the transcode filter graph.
const (
	mp3BitRate   = 320000
	mp3FrameSize = 1152
)

// Export writes the waveform to outPath, dispatching on the file extension.
// WAV is written directly; MP3 goes through a WAV intermediate in tmpDir and
// an FFmpeg transcode. Returns the rendered duration in seconds.
func Export(w *Waveform, outPath, tmpDir string) (float64, error) {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".wav":
		if err := WriteWAV(w, outPath); err != nil {
			return 0, err
		}
	case ".mp3":
		tmpWAV := filepath.Join(tmpDir, "mix.wav")
		if err := WriteWAV(w, tmpWAV); err != nil {
			return 0, err
		}
		if err := transcodeMP3(tmpWAV, outPath); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unsupported output format: %s", filepath.Ext(outPath))
	}
	return w.Duration(), nil
}

// WriteWAV writes the waveform as a 16-bit PCM RIFF file. Samples are
// hard-clipped to [-1, 1] before quantisation.
func WriteWAV(w *Waveform, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	dataSize := len(w.Samples) * 2
	byteRate := w.Rate * w.Channels * 2

	header := make([]byte, 0, 44)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(36+dataSize))
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, 1) // PCM
	header = binary.LittleEndian.AppendUint16(header, uint16(w.Channels))
	header = binary.LittleEndian.AppendUint32(header, uint32(w.Rate))
	header = binary.LittleEndian.AppendUint32(header, uint32(byteRate))
	header = binary.LittleEndian.AppendUint16(header, uint16(w.Channels*2))
	header = binary.LittleEndian.AppendUint16(header, 16)
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, uint32(dataSize))

	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	buf := make([]byte, 0, len(w.Samples)*2)
	for _, s := range w.Samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(math.Round(s*32767))))
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV samples: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// transcodeMP3 re-encodes a WAV file as MP3 through the decode filter encode
// chain: reader frames are reformatted to planar s16 in fixed-size frames and
// fed to libmp3lame.
func transcodeMP3(inPath, outPath string) error {
	reader, _, err := OpenAudioFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to open intermediate file: %w", err)
	}
	defer reader.Close()

	filterSpec := fmt.Sprintf("aformat=sample_fmts=s16p,asetnsamples=n=%d", mp3FrameSize)
	filterGraph, bufferSrcCtx, bufferSinkCtx, err := setupFilterGraph(reader.GetDecoderContext(), filterSpec)
	if err != nil {
		return err
	}
	defer ffmpeg.AVFilterGraphFree(&filterGraph)

	encoder, err := createMP3Encoder(outPath, bufferSinkCtx)
	if err != nil {
		return err
	}
	defer encoder.Close()

	filteredFrame := ffmpeg.AVFrameAlloc()
	if filteredFrame == nil {
		return fmt.Errorf("failed to allocate frame")
	}
	defer ffmpeg.AVFrameFree(&filteredFrame)

	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			return err
		}

		if frame == nil {
			if _, err := ffmpeg.AVBuffersrcAddFrameFlags(bufferSrcCtx, nil, 0); err != nil {
				return fmt.Errorf("failed to flush filter graph: %w", err)
			}
		} else {
			if _, err := ffmpeg.AVBuffersrcAddFrameFlags(bufferSrcCtx, frame, 0); err != nil {
				return fmt.Errorf("failed to feed filter graph: %w", err)
			}
		}

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
				return fmt.Errorf("failed to pull filtered frame: %w", err)
			}
			if err := encoder.WriteFrame(filteredFrame); err != nil {
				ffmpeg.AVFrameUnref(filteredFrame)
				return err
			}
			ffmpeg.AVFrameUnref(filteredFrame)
		}

		if frame == nil || drained {
			break
		}
	}

	if err := encoder.Flush(); err != nil {
		return err
	}
	return encoder.Close()
}

// Encoder wraps the audio encoding and muxing functionality
type Encoder struct {
	fmtCtx    *ffmpeg.AVFormatContext
	encCtx    *ffmpeg.AVCodecContext
	stream    *ffmpeg.AVStream
	packet    *ffmpeg.AVPacket
	streamIdx int
}

// createMP3Encoder creates a libmp3lame encoder matching the filter output
func createMP3Encoder(outputPath string, bufferSinkCtx *ffmpeg.AVFilterContext) (*Encoder, error) {
	outputPathC := ffmpeg.ToCStr(outputPath)
	defer outputPathC.Free()

	var fmtCtx *ffmpeg.AVFormatContext
	if _, err := ffmpeg.AVFormatAllocOutputContext2(&fmtCtx, nil, nil, outputPathC); err != nil {
		return nil, fmt.Errorf("failed to allocate output context: %w", err)
	}

	codec := ffmpeg.AVCodecFindEncoder(ffmpeg.AVCodecIdMp3)
	if codec == nil {
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("MP3 encoder not found for output: %s", outputPath)
	}

	stream := ffmpeg.AVFormatNewStream(fmtCtx, nil)
	if stream == nil {
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to create stream for output: %s", outputPath)
	}

	encCtx := ffmpeg.AVCodecAllocContext3(codec)
	if encCtx == nil {
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to allocate encoder context for output: %s", outputPath)
	}

	sampleRate, err := ffmpeg.AVBuffersinkGetSampleRate(bufferSinkCtx)
	if err != nil {
		ffmpeg.AVCodecFreeContext(&encCtx)
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to get sample rate: %w", err)
	}

	channels, err := ffmpeg.AVBuffersinkGetChannels(bufferSinkCtx)
	if err != nil {
		ffmpeg.AVCodecFreeContext(&encCtx)
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to get channels: %w", err)
	}

	timeBase := ffmpeg.AVBuffersinkGetTimeBase(bufferSinkCtx)

	encCtx.SetSampleFmt(ffmpeg.AVSampleFmtS16P)
	encCtx.SetSampleRate(sampleRate)
	ffmpeg.AVChannelLayoutDefault(encCtx.ChLayout(), channels)
	ffmpeg.AVOptSetInt(encCtx.RawPtr(), ffmpeg.GlobalCStr("b"), mp3BitRate, 0)

	if fmtCtx.Oformat().Flags()&ffmpeg.AVFmtGlobalheader != 0 {
		encCtx.SetFlags(encCtx.Flags() | ffmpeg.AVCodecFlagGlobalHeader)
	}

	encCtx.SetTimeBase(timeBase)

	if _, err := ffmpeg.AVCodecOpen2(encCtx, codec, nil); err != nil {
		ffmpeg.AVCodecFreeContext(&encCtx)
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to open encoder: %w", err)
	}

	if _, err := ffmpeg.AVCodecParametersFromContext(stream.Codecpar(), encCtx); err != nil {
		ffmpeg.AVCodecFreeContext(&encCtx)
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to copy encoder parameters: %w", err)
	}

	stream.SetTimeBase(encCtx.TimeBase())

	if fmtCtx.Oformat().Flags()&ffmpeg.AVFmtNofile == 0 {
		var pb *ffmpeg.AVIOContext
		if _, err := ffmpeg.AVIOOpen(&pb, outputPathC, ffmpeg.AVIOFlagWrite); err != nil {
			ffmpeg.AVCodecFreeContext(&encCtx)
			ffmpeg.AVFormatFreeContext(fmtCtx)
			return nil, fmt.Errorf("failed to open output file: %w", err)
		}
		fmtCtx.SetPb(pb)
	}

	if _, err := ffmpeg.AVFormatWriteHeader(fmtCtx, nil); err != nil {
		if fmtCtx.Pb() != nil {
			ffmpeg.AVIOClose(fmtCtx.Pb())
		}
		ffmpeg.AVCodecFreeContext(&encCtx)
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	packet := ffmpeg.AVPacketAlloc()
	if packet == nil {
		if fmtCtx.Pb() != nil {
			ffmpeg.AVIOClose(fmtCtx.Pb())
		}
		ffmpeg.AVCodecFreeContext(&encCtx)
		ffmpeg.AVFormatFreeContext(fmtCtx)
		return nil, fmt.Errorf("failed to allocate packet for output: %s", outputPath)
	}

	return &Encoder{
		fmtCtx:    fmtCtx,
		encCtx:    encCtx,
		stream:    stream,
		packet:    packet,
		streamIdx: 0,
	}, nil
}

// WriteFrame encodes and writes a single audio frame
func (e *Encoder) WriteFrame(frame *ffmpeg.AVFrame) error {
	// Rescale PTS to encoder timebase if needed
	if frame.Pts() != ffmpeg.AVNoptsValue {
		frame.SetPts(
			ffmpeg.AVRescaleQ(frame.Pts(), frame.TimeBase(), e.encCtx.TimeBase()),
		)
	}

	if _, err := ffmpeg.AVCodecSendFrame(e.encCtx, frame); err != nil {
		return fmt.Errorf("failed to send frame to encoder: %w", err)
	}

	return e.receivePackets()
}

// Flush flushes the encoder
func (e *Encoder) Flush() error {
	if _, err := ffmpeg.AVCodecSendFrame(e.encCtx, nil); err != nil {
		return fmt.Errorf("failed to flush encoder: %w", err)
	}

	return e.receivePackets()
}

// receivePackets receives and writes packets from the encoder
func (e *Encoder) receivePackets() error {
	for {
		ffmpeg.AVPacketUnref(e.packet)

		if _, err := ffmpeg.AVCodecReceivePacket(e.encCtx, e.packet); err != nil {
			if errors.Is(err, ffmpeg.EAgain) || errors.Is(err, ffmpeg.AVErrorEOF) {
				break
			}
			return fmt.Errorf("failed to receive packet: %w", err)
		}

		e.packet.SetStreamIndex(e.streamIdx)
		ffmpeg.AVPacketRescaleTs(e.packet, e.encCtx.TimeBase(), e.stream.TimeBase())

		if _, err := ffmpeg.AVInterleavedWriteFrame(e.fmtCtx, e.packet); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
	}

	return nil
}

// Close closes the encoder and output file
// Safe to call multiple times - subsequent calls are no-ops.
func (e *Encoder) Close() error {
	if e.fmtCtx == nil {
		return nil
	}

	if _, err := ffmpeg.AVWriteTrailer(e.fmtCtx); err != nil {
		return fmt.Errorf("failed to write trailer: %w", err)
	}

	ffmpeg.AVPacketFree(&e.packet)
	ffmpeg.AVCodecFreeContext(&e.encCtx)

	if e.fmtCtx.Oformat().Flags()&ffmpeg.AVFmtNofile == 0 {
		if e.fmtCtx.Pb() != nil {
			if _, err := ffmpeg.AVIOClose(e.fmtCtx.Pb()); err != nil {
				return fmt.Errorf("failed to close output file: %w", err)
			}
			e.fmtCtx.SetPb(nil)
		}
	}

	ffmpeg.AVFormatFreeContext(e.fmtCtx)
	e.fmtCtx = nil // Mark as closed

	return nil
}
