package studio

import "slices"

// Voice is a prebuilt speech voice.
type Voice struct {
	Name        string   `json:"name"`
	Gender      string   `json:"gender"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

var voices = []Voice{
	{Name: "Zephyr", Gender: "Female", Tags: []string{"Young", "Female", "Bright"}, Description: "Bright and clear female voice"},
	{Name: "Puck", Gender: "Male", Tags: []string{"Young", "Male", "Upbeat"}, Description: "Upbeat and energetic male voice"},
	{Name: "Charon", Gender: "Male", Tags: []string{"Young", "Male", "Informative"}, Description: "Calm and informative male voice"},
	{Name: "Kore", Gender: "Female", Tags: []string{"Young", "Female", "Firm"}, Description: "Firm and professional female voice"},
	{Name: "Fenrir", Gender: "Male", Tags: []string{"Young", "Male", "Excitable"}, Description: "Excited and dynamic male voice"},
	{Name: "Leda", Gender: "Female", Tags: []string{"Young", "Female", "Youthful"}, Description: "Soft and youthful female voice"},
	{Name: "Orus", Gender: "Male", Tags: []string{"Young", "Male", "Firm"}, Description: "Confident male voice"},
	{Name: "Aoede", Gender: "Female", Tags: []string{"Young", "Female", "Breezy"}, Description: "Light and breezy female voice"},
}

const DefaultVoice = "Kore"

// Voices returns the catalog of prebuilt speech voices.
func Voices() []Voice {
	out := make([]Voice, len(voices))
	for i, v := range voices {
		v.Tags = slices.Clone(v.Tags)
		out[i] = v
	}
	return out
}

func IsCatalogVoice(name string) bool {
	return slices.ContainsFunc(voices, func(v Voice) bool { return v.Name == name })
}

type Emotion string

const (
	EmotionNeutral Emotion = "Neutral"
	EmotionHappy   Emotion = "Happy"
	EmotionSad     Emotion = "Sad"
	EmotionExcited Emotion = "Excited"
	EmotionWhisper Emotion = "Whisper"
	EmotionAngry   Emotion = "Angry"
)

var emotionStyle = map[Emotion]string{
	EmotionHappy:   "Say cheerfully: ",
	EmotionSad:     "Say sadly: ",
	EmotionExcited: "Say excitedly: ",
	EmotionWhisper: "Say in a whisper: ",
	EmotionAngry:   "Say angrily: ",
}

func Emotions() []Emotion {
	return []Emotion{EmotionNeutral, EmotionHappy, EmotionSad, EmotionExcited, EmotionWhisper, EmotionAngry}
}

// stylePrefix returns the delivery instruction prepended to speech text.
func (e Emotion) stylePrefix() (string, bool) {
	if e == "" || e == EmotionNeutral {
		return "", true
	}
	s, ok := emotionStyle[e]
	return s, ok
}
