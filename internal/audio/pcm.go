package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SpeechSampleRate and SpeechChannels describe the raw PCM returned by the
	// speech model.
	SpeechSampleRate = 24000
	SpeechChannels   = 1

	BitsPerSample  = 16
	bytesPerSample = BitsPerSample / 8
	MaxChannels    = 8
)

var supportedRates = map[int]bool{
	8000: true, 11025: true, 16000: true, 22050: true, 24000: true,
	32000: true, 44100: true, 48000: true, 88200: true, 96000: true,
}

// Buffer holds decoded PCM as normalized float samples, one slice per channel.
// PCM keeps the original little-endian bytes so re-encoding is lossless.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
	PCM        []byte
}

func (b *Buffer) NumChannels() int { return len(b.Channels) }

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeBase64 decodes an encoded audio blob. Standard and URL-safe alphabets
// are accepted, with or without padding; whitespace is ignored.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, &DecodeError{Reason: "empty payload"}
	}
	var firstErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			if len(b) == 0 {
				return nil, &DecodeError{Reason: "empty payload"}
			}
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, &DecodeError{Reason: "malformed base64", Err: firstErr}
}

// ValidateFormat rejects sample rate and channel combinations that a standard
// media element is not expected to play.
func ValidateFormat(sampleRate, channels int) error {
	if !supportedRates[sampleRate] {
		return &FormatError{
			Reason:     fmt.Sprintf("unsupported sample rate %d", sampleRate),
			SampleRate: sampleRate,
			Channels:   channels,
		}
	}
	if channels < 1 || channels > MaxChannels {
		return &FormatError{
			Reason:     fmt.Sprintf("unsupported channel count %d (want 1..%d)", channels, MaxChannels),
			SampleRate: sampleRate,
			Channels:   channels,
		}
	}
	return nil
}

// DecodePCM16 interprets raw as interleaved signed 16-bit little-endian
// samples and splits them across channels.
func DecodePCM16(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if channels < 1 {
		return nil, &FormatError{Reason: fmt.Sprintf("invalid channel count %d", channels), Length: len(raw), Channels: channels}
	}
	frameSize := bytesPerSample * channels
	if len(raw)%frameSize != 0 {
		return nil, &FormatError{
			Reason:     fmt.Sprintf("payload length %d is not a multiple of %d bytes", len(raw), frameSize),
			Length:     len(raw),
			SampleRate: sampleRate,
			Channels:   channels,
		}
	}

	frames := len(raw) / frameSize
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			off := (f*channels + c) * bytesPerSample
			s := int16(binary.LittleEndian.Uint16(raw[off:]))
			out[c][f] = float32(s) / 32768
		}
	}
	return &Buffer{SampleRate: sampleRate, Channels: out, PCM: raw}, nil
}

// RateFromMediaType extracts the sample rate from an L16 media type such as
// "audio/L16;codec=pcm;rate=24000".
func RateFromMediaType(mediaType string) (int, bool) {
	for _, part := range strings.Split(mediaType, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || !strings.EqualFold(k, "rate") {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
