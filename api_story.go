package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type StoryCharacter struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	VisualDescription string `json:"visualDescription"`
}

type StoryScene struct {
	ID                 int      `json:"id"`
	Description        string   `json:"description"`
	VisualContext      string   `json:"visualContext"`
	CharactersInvolved []string `json:"charactersInvolved"`
}

// Storyboard is a story broken down into characters and scenes.
type Storyboard struct {
	Characters []StoryCharacter `json:"characters"`
	Scenes     []StoryScene     `json:"scenes"`
}

type MangaCharacter struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Appearance string `json:"appearance"`
}

type MangaPanel struct {
	Description string `json:"description"`
	Dialogue    string `json:"dialogue,omitempty"`
	Speaker     string `json:"speaker,omitempty"`
}

type MangaPage struct {
	PageNumber int          `json:"pageNumber"`
	Panels     []MangaPanel `json:"panels"`
}

type MangaScript struct {
	Characters []MangaCharacter `json:"characters"`
	Pages      []MangaPage      `json:"pages"`
}

var storyboardSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "characters": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "visualDescription": {"type": "string"}
        },
        "required": ["id", "name", "visualDescription"]
      }
    },
    "scenes": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "description": {"type": "string"},
          "visualContext": {"type": "string"},
          "charactersInvolved": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["id", "description", "visualContext", "charactersInvolved"]
      }
    }
  },
  "required": ["characters", "scenes"]
}`)

var mangaScriptSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "characters": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "role": {"type": "string"},
          "appearance": {"type": "string"}
        },
        "required": ["name", "role", "appearance"]
      }
    },
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "pageNumber": {"type": "integer"},
          "panels": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "description": {"type": "string"},
                "dialogue": {"type": "string"},
                "speaker": {"type": "string"}
              },
              "required": ["description"]
            }
          }
        },
        "required": ["pageNumber", "panels"]
      }
    }
  },
  "required": ["characters", "pages"]
}`)

type AnalyzeStoryRequest struct {
	Model ModelRef
	Story string

	MaxRetries *int
	Retry      *RetryPolicy
	Timeout    time.Duration
}

// AnalyzeStory breaks a story into characters and scenes for storyboarding.
func AnalyzeStory(ctx context.Context, req AnalyzeStoryRequest) (*Storyboard, error) {
	if strings.TrimSpace(req.Story) == "" {
		return nil, invalid("story", "is required")
	}
	out, err := GenerateObject[Storyboard](ctx, GenerateObjectRequest{
		Model:      req.Model,
		Prompt:     fmt.Sprintf("Expert storyboard artist breakdown of story into scenes and characters. Story: \"%s\"", req.Story),
		Schema:     storyboardSchema,
		MaxRetries: req.MaxRetries,
		Retry:      req.Retry,
		Timeout:    req.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &out.Object, nil
}

type MangaScriptRequest struct {
	Model ModelRef

	Concept   string
	Genre     string
	PageCount int

	MaxRetries *int
	Retry      *RetryPolicy
	Timeout    time.Duration
}

// GenerateMangaScript drafts characters and paneled pages for a concept.
func GenerateMangaScript(ctx context.Context, req MangaScriptRequest) (*MangaScript, error) {
	if strings.TrimSpace(req.Concept) == "" {
		return nil, invalid("concept", "is required")
	}
	if req.PageCount <= 0 {
		return nil, invalid("page_count", "must be > 0")
	}
	out, err := GenerateObject[MangaScript](ctx, GenerateObjectRequest{
		Model:      req.Model,
		Prompt:     fmt.Sprintf("Professional manga editor script. Concept: \"%s\", Genre: %s, Length: %d pages.", req.Concept, req.Genre, req.PageCount),
		Schema:     mangaScriptSchema,
		MaxRetries: req.MaxRetries,
		Retry:      req.Retry,
		Timeout:    req.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &out.Object, nil
}

type MangaPanelRequest struct {
	Model ModelRef

	Description string
	Style       string
	AspectRatio string
	Characters  []MangaCharacter

	// Limiter paces the image call alongside other image requests.
	Limiter *rate.Limiter

	Retry   *RetryPolicy
	Timeout time.Duration
}

// GenerateMangaPanel draws one panel, describing every character's look so
// panels stay consistent.
func GenerateMangaPanel(ctx context.Context, req MangaPanelRequest) (string, error) {
	if strings.TrimSpace(req.Description) == "" {
		return "", invalid("description", "is required")
	}
	out, err := GenerateImages(ctx, GenerateImagesRequest{
		Model:       req.Model,
		Prompt:      panelPrompt(req.Description, req.Style, req.Characters),
		AspectRatio: req.AspectRatio,
		N:           1,
		Limiter:     req.Limiter,
		Retry:       req.Retry,
		Timeout:     req.Timeout,
	})
	if err != nil {
		return "", err
	}
	return out.Images[0], nil
}

func panelPrompt(description, style string, chars []MangaCharacter) string {
	ctxParts := make([]string, 0, len(chars))
	for _, c := range chars {
		ctxParts = append(ctxParts, fmt.Sprintf("[Character: %s, Look: %s]", c.Name, c.Appearance))
	}
	return fmt.Sprintf("Style: %s. Action: %s. Characters: %s.", style, description, strings.Join(ctxParts, " "))
}
