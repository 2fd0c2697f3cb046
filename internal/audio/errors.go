package audio

import "fmt"

// DecodeError reports an audio payload that could not be decoded into bytes.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("audio: decode: %s: %v", e.Reason, e.Err)
	}
	return "audio: decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FormatError reports PCM data or parameters that do not describe valid
// 16-bit linear audio.
type FormatError struct {
	Reason     string
	Length     int
	SampleRate int
	Channels   int
}

func (e *FormatError) Error() string {
	return "audio: format: " + e.Reason
}
