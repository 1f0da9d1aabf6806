package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

const (
	hopSize    = 256
	windowSize = 1024
	// bytesPerFrame is 16-bit stereo PCM, the format both ebiten decoders
	// normalize to regardless of source encoding.
	bytesPerFrame = 4
)

// hopWindow is one analysis window: windowSize mono samples (stereo frames
// downmixed) starting at timeMS into the track.
type hopWindow struct {
	timeMS  int64
	samples []float64
}

// decodedStream is the minimal surface the analyzer needs from a decoded
// source file: its sample rate and a way to pull successive hop-windows.
// Concrete decoders (wav, mp3) satisfy this by wrapping the teacher's own
// ebiten audio decoders; nothing in this package talks to an audio device.
type decodedStream interface {
	SampleRate() int
	NextHop() (hopWindow, error) // io.EOF when exhausted
}

// pcmStream implements decodedStream over a fully-buffered 16-bit stereo PCM
// byte slice, advancing by hopSize samples per call and keeping the most
// recent windowSize samples (zero-padded at the start of the track).
type pcmStream struct {
	sampleRate int
	pcm        []byte
	cursor     int // byte offset of the next hop to emit
	history    []float64
}

func (p *pcmStream) SampleRate() int { return p.sampleRate }

func (p *pcmStream) NextHop() (hopWindow, error) {
	frameStart := p.cursor / bytesPerFrame
	totalFrames := len(p.pcm) / bytesPerFrame
	if frameStart >= totalFrames {
		return hopWindow{}, io.EOF
	}
	end := p.cursor + hopSize*bytesPerFrame
	if end > len(p.pcm) {
		end = len(p.pcm)
	}
	hop := decodeMonoFrames(p.pcm[p.cursor:end])
	p.history = append(p.history, hop...)
	if len(p.history) > windowSize {
		p.history = p.history[len(p.history)-windowSize:]
	}
	window := make([]float64, windowSize)
	copy(window[windowSize-len(p.history):], p.history)

	timeMS := int64(float64(frameStart) / float64(p.sampleRate) * 1000)
	p.cursor = end
	return hopWindow{timeMS: timeMS, samples: window}, nil
}

// decodeMonoFrames downmixes little-endian 16-bit stereo PCM bytes to a
// slice of float64 samples in [-1, 1].
func decodeMonoFrames(pcm []byte) []float64 {
	n := len(pcm) / bytesPerFrame
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		off := i * bytesPerFrame
		left := int16(uint16(pcm[off]) | uint16(pcm[off+1])<<8)
		right := int16(uint16(pcm[off+2]) | uint16(pcm[off+3])<<8)
		out[i] = (float64(left) + float64(right)) / 2 / 32768
	}
	return out
}

// openDecodedStream dispatches on file extension to the matching ebiten
// decoder and buffers its PCM output into a pcmStream. wav and mp3 are the
// two container formats settings/music_paths.json realistically points at.
func openDecodedStream(path string) (decodedStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio source %q: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read audio source %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		dec, err := wav.DecodeWithoutResampling(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode wav %q: %w", path, err)
		}
		pcm, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("read decoded wav %q: %w", path, err)
		}
		return &pcmStream{sampleRate: dec.SampleRate(), pcm: pcm}, nil
	case ".mp3":
		dec, err := mp3.DecodeWithoutResampling(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode mp3 %q: %w", path, err)
		}
		pcm, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("read decoded mp3 %q: %w", path, err)
		}
		return &pcmStream{sampleRate: dec.SampleRate(), pcm: pcm}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported audio container %q", ErrAnalyzeFailed, filepath.Ext(path))
	}
}
