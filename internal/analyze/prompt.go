package analyze

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/philvuai/bnk/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptBuilder renders document text and the category taxonomy into a
// single classification instruction for the model.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder creates a PromptBuilder with the embedded template loaded.
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/classify_prompt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse classify prompt template: %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// promptData carries everything the classification template needs.
type promptData struct {
	Text       string
	Categories []model.CategoryInfo
}

// Build renders the classification prompt for the given normalized text. The
// taxonomy enumeration always comes from the shared table so the prompt can
// never diverge from the fallback matcher's labels.
func (pb *PromptBuilder) Build(text string) (string, error) {
	var buf bytes.Buffer
	data := promptData{
		Text:       text,
		Categories: model.Categories(),
	}
	if err := pb.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute classify prompt template: %w", err)
	}
	return buf.String(), nil
}
