package generator

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type Prompts struct {
	Shorts          PromptTemplate   `yaml:"shorts"`
	Blog            PromptTemplate   `yaml:"blog"`
	Twitter         PromptTemplate   `yaml:"twitter"`
	LinkedIn        PromptTemplate   `yaml:"linkedin"`
	Instagram       PromptTemplate   `yaml:"instagram"`
	ThumbnailTopic  PromptTemplate   `yaml:"thumbnail_topic"`
	ThumbnailImage  PromptTemplate   `yaml:"thumbnail_image"`
	ThumbnailStyles []ThumbnailStyle `yaml:"thumbnail_styles"`
}

// PromptTemplate is one instruction set. User is a text/template rendered with PromptParams.
type PromptTemplate struct {
	System          string `yaml:"system"`
	User            string `yaml:"user"`
	MaxTokens       int    `yaml:"max_tokens"`
	TranscriptLimit int    `yaml:"transcript_limit"`
}

type ThumbnailStyle struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type PromptParams struct {
	Title      string
	Transcript string
	Topic      string
	Style      string
}

// LoadPrompts parses the prompt set compiled into the binary.
func LoadPrompts() (*Prompts, error) {
	return parsePrompts(defaultPrompts)
}

// LoadPromptsFrom reads an override file, e.g. for prompt tuning without a rebuild.
func LoadPromptsFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parsePrompts(data)
}

func parsePrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	if len(p.ThumbnailStyles) == 0 {
		return nil, fmt.Errorf("prompts file defines no thumbnail styles")
	}
	return &p, nil
}

// Render truncates the transcript to the template's limit and fills the user prompt.
func (t PromptTemplate) Render(params PromptParams) (string, error) {
	params.Transcript = Truncate(params.Transcript, t.TranscriptLimit)
	return render(t.User, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// Truncate keeps at most limit characters, never splitting a rune. limit <= 0 disables it.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
