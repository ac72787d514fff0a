package answer

import (
	"context"
	"errors"
	"fmt"

	"labrag/internal/domain"
)

const promptTemplate = `You are a medical assistant. Based on this context:

%s

Answer this question in very simple words:
%s`

// BuildPrompt embeds the reference context and question verbatim in the fixed template.
func BuildPrompt(reference, question string) string {
	return fmt.Sprintf(promptTemplate, reference, question)
}

// Generator turns retrieved context and a question into a plain-language answer.
type Generator struct {
	completer domain.Completer
}

func NewGenerator(completer domain.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate returns the completion text verbatim. Failures are not retried
// and surface as domain.ErrService.
func (g *Generator) Generate(ctx context.Context, reference, question string) (string, error) {
	out, err := g.completer.Complete(ctx, BuildPrompt(reference, question))
	if err != nil {
		if errors.Is(err, domain.ErrService) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrService, err)
	}
	return out, nil
}
