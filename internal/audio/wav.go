package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	HeaderSize = 44
	MediaType  = "audio/wav"

	formatPCM = 1
)

// Header is the canonical 44-byte RIFF/WAVE header for linear PCM.
type Header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * BlockAlign
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // payload length
}

// NewHeader builds the header for dataLen bytes of 16-bit PCM.
func NewHeader(dataLen, sampleRate, channels int) Header {
	blockAlign := uint16(channels * bytesPerSample)
	return Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(HeaderSize - 8 + dataLen),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: BitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataLen),
	}
}

func (h Header) DataLen() int { return int(h.Subchunk2Size) }

// FileLen is the total container length declared by the header.
func (h Header) FileLen() int { return int(h.ChunkSize) + 8 }

func (h Header) Duration() time.Duration {
	if h.ByteRate == 0 {
		return 0
	}
	return time.Duration(h.Subchunk2Size) * time.Second / time.Duration(h.ByteRate)
}

// EncodeWAV writes the header followed by pcm unchanged.
func EncodeWAV(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if err := ValidateFormat(sampleRate, channels); err != nil {
		return nil, err
	}
	if len(pcm)%(bytesPerSample*channels) != 0 {
		return nil, &FormatError{
			Reason:     fmt.Sprintf("payload length %d is not a multiple of %d bytes", len(pcm), bytesPerSample*channels),
			Length:     len(pcm),
			SampleRate: sampleRate,
			Channels:   channels,
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, NewHeader(len(pcm), sampleRate, channels)); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// ParseHeader reads and validates the header of a WAV file produced by
// EncodeWAV.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < HeaderSize {
		return h, &FormatError{Reason: fmt.Sprintf("wav data too short: need at least %d bytes, got %d", HeaderSize, len(data)), Length: len(data)}
	}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("read wav header: %w", err)
	}
	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return h, &FormatError{Reason: "missing RIFF header"}
	case string(h.Format[:]) != "WAVE":
		return h, &FormatError{Reason: "missing WAVE format"}
	case string(h.Subchunk1ID[:]) != "fmt ":
		return h, &FormatError{Reason: "missing fmt chunk"}
	case string(h.Subchunk2ID[:]) != "data":
		return h, &FormatError{Reason: "missing data chunk"}
	case h.AudioFormat != formatPCM:
		return h, &FormatError{Reason: fmt.Sprintf("unsupported audio format %d", h.AudioFormat)}
	case h.BitsPerSample != BitsPerSample:
		return h, &FormatError{Reason: fmt.Sprintf("unsupported bit depth %d", h.BitsPerSample)}
	}
	return h, nil
}
