package out

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"math/rand/v2"

	"atheneum/internal/modules/focus/domain"
)

const (
	sampleRate   = 22050
	trackSeconds = 30
)

type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// biquad is a second order filter with coefficients normalised by a0.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func newBiquad(p domain.Profile, rate float64) *biquad {
	if p.Filter == domain.FilterNone {
		return &biquad{b0: 1}
	}
	w0 := 2 * math.Pi * p.Frequency / rate
	q := p.Q
	if q <= 0 {
		q = math.Sqrt2 / 2
	}
	alpha := math.Sin(w0) / (2 * q)
	cosw := math.Cos(w0)
	a0 := 1 + alpha
	f := &biquad{a1: -2 * cosw / a0, a2: (1 - alpha) / a0}
	switch p.Filter {
	case domain.FilterLowpass:
		f.b0 = (1 - cosw) / 2 / a0
		f.b1 = (1 - cosw) / a0
		f.b2 = f.b0
	case domain.FilterBandpass:
		f.b0 = alpha / a0
		f.b2 = -alpha / a0
	}
	return f
}

func (f *biquad) next(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// writeNoiseTrack writes a mono 16-bit PCM WAV of filtered white noise.
func writeNoiseTrack(w io.Writer, p domain.Profile, seconds int, rng *rand.Rand) error {
	samples := sampleRate * seconds
	dataSize := uint32(samples * 2)
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      1,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return err
	}
	filter := newBiquad(p, sampleRate)
	var buf [2]byte
	for i := 0; i < samples; i++ {
		v := filter.next(rng.Float64()*2-1) * p.Volume
		v = math.Max(-1, math.Min(1, v))
		binary.LittleEndian.PutUint16(buf[:], uint16(int16(v*math.MaxInt16)))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
