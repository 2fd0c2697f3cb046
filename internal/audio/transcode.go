package audio

import "time"

// Container is a playable WAV file built from raw PCM.
type Container struct {
	Data       []byte
	MediaType  string
	SampleRate int
	Channels   int
	Frames     int
	Duration   time.Duration
}

// ToPlayableContainer decodes a base64 PCM16 blob and wraps it in a WAV
// container. The original sample bytes are carried over untouched.
func ToPlayableContainer(rawBase64 string, sampleRate, channels int) (*Container, error) {
	raw, err := DecodeBase64(rawBase64)
	if err != nil {
		return nil, err
	}
	return Transcode(raw, sampleRate, channels)
}

// Transcode is ToPlayableContainer for already decoded bytes.
func Transcode(raw []byte, sampleRate, channels int) (*Container, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Reason: "empty payload"}
	}
	if err := ValidateFormat(sampleRate, channels); err != nil {
		return nil, err
	}
	buf, err := DecodePCM16(raw, sampleRate, channels)
	if err != nil {
		return nil, err
	}
	data, err := EncodeWAV(buf.PCM, buf.SampleRate, buf.NumChannels())
	if err != nil {
		return nil, err
	}
	return &Container{
		Data:       data,
		MediaType:  MediaType,
		SampleRate: sampleRate,
		Channels:   channels,
		Frames:     buf.Frames(),
		Duration:   buf.Duration(),
	}, nil
}
