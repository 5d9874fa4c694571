package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrInvalid reports input that is not a readable PCM WAV stream.
	ErrInvalid = errors.New("audio: invalid wav data")
	// ErrEmpty reports a WAV stream without samples.
	ErrEmpty = errors.New("audio: no samples")
)

const pcmFormat = 1

// Buffer holds interleaved integer PCM samples in their source bit depth.
type Buffer struct {
	Samples  []int
	Rate     int
	Channels int
	BitDepth int
}

func (b Buffer) channels() int {
	if b.Channels < 1 {
		return 1
	}
	return b.Channels
}

// Frames is the number of sample frames (samples per channel).
func (b Buffer) Frames() int {
	return len(b.Samples) / b.channels()
}

// Duration is the length in seconds.
func (b Buffer) Duration() float64 {
	if b.Rate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Rate)
}

// Load reads a PCM WAV file.
func Load(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a PCM WAV stream. It fails with ErrInvalid or ErrEmpty for
// unusable input.
func Decode(r io.ReadSeeker) (Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Buffer{}, ErrInvalid
	}
	if d.WavAudioFormat != pcmFormat {
		return Buffer{}, fmt.Errorf("%w: unsupported format %d", ErrInvalid, d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out := Buffer{
		Samples:  buf.Data,
		Rate:     int(d.SampleRate),
		Channels: int(d.NumChans),
		BitDepth: int(d.BitDepth),
	}
	if out.Rate <= 0 {
		return Buffer{}, fmt.Errorf("%w: sample rate %d", ErrInvalid, out.Rate)
	}
	if out.Frames() == 0 {
		return Buffer{}, ErrEmpty
	}
	return out, nil
}

// Encode writes b as a PCM WAV stream.
func Encode(w io.WriteSeeker, b Buffer) error {
	depth := b.BitDepth
	if depth == 0 {
		depth = 16
	}
	enc := wav.NewEncoder(w, b.Rate, depth, b.channels(), pcmFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: b.channels(), SampleRate: b.Rate},
		Data:           b.Samples,
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// EncodeBytes returns b encoded as a WAV file.
func EncodeBytes(b Buffer) ([]byte, error) {
	var m memFile
	if err := Encode(&m, b); err != nil {
		return nil, err
	}
	return m.buf, nil
}

// WriteFile encodes b to path.
func WriteFile(path string, b Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// memFile is an in-memory io.WriteSeeker for the WAV encoder, which
// rewrites header sizes on Close.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("audio: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("audio: negative seek position %d", abs)
	}
	m.pos = int(abs)
	return abs, nil
}
