package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/docqa_prompt.txt
var docQASystemPrompt string

// NumberedDocument is a retrieved passage with its 1-based citation number.
type NumberedDocument struct {
	Number int
	Text   string
}

// NewDocQATemplate returns the chat template used by the document-QA graph.
// It expects the variables "Documents" ([]NumberedDocument) and "Question".
func NewDocQATemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(docQASystemPrompt),
		schema.UserMessage("{{.Question}}"),
	)
}

// DocQAVariables builds the template variables for question and passages.
func DocQAVariables(question string, passages []string) map[string]any {
	docs := make([]NumberedDocument, len(passages))
	for i, p := range passages {
		docs[i] = NumberedDocument{Number: i + 1, Text: p}
	}
	return map[string]any{
		"Question":  question,
		"Documents": docs,
	}
}

// RenderDocQAMessages renders the document-QA prompt outside a graph.
func RenderDocQAMessages(ctx context.Context, question string, passages []string) ([]*schema.Message, error) {
	msgs, err := NewDocQATemplate().Format(ctx, DocQAVariables(question, passages))
	if err != nil {
		return nil, fmt.Errorf("docqa prompt render: %w", err)
	}
	return msgs, nil
}
