package provider

type FinishReason string

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role    Role
	Content []ContentPart
}

type ContentPart interface {
	isContentPart()
}

type TextPart struct{ Text string }

func (TextPart) isContentPart() {}

// InlineDataPart carries base64 encoded binary content (image, audio, video).
type InlineDataPart struct {
	MediaType string
	Data      string
}

func (InlineDataPart) isContentPart() {}

func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentPart{TextPart{Text: text}}}
}

func (m Message) Text() string {
	var b []byte
	for _, p := range m.Content {
		if t, ok := p.(TextPart); ok {
			b = append(b, t.Text...)
		}
	}
	return string(b)
}

// InlineData returns the first inline binary part of the message, if any.
func (m Message) InlineData() (InlineDataPart, bool) {
	for _, p := range m.Content {
		if d, ok := p.(InlineDataPart); ok && d.Data != "" {
			return d, true
		}
	}
	return InlineDataPart{}, false
}
