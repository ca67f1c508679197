package matching

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// Generator produces a text completion for a prompt. LLM adapters implement it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PromptAdjudicator asks a Generator whether two descriptions are the same
// product and reads a yes/no answer.
type PromptAdjudicator struct {
	gen Generator
}

// NewPromptAdjudicator wraps gen.
func NewPromptAdjudicator(gen Generator) *PromptAdjudicator {
	return &PromptAdjudicator{gen: gen}
}

// SameProduct reports whether a and b are the same physical product. Any
// answer other than an explicit affirmative is false.
func (p *PromptAdjudicator) SameProduct(ctx context.Context, a, b string) (bool, error) {
	answer, err := p.gen.Generate(ctx, sameProductPrompt(a, b))
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrAdjudicationUnavailable, err)
	}
	return IsAffirmative(answer), nil
}

func sameProductPrompt(a, b string) string {
	return fmt.Sprintf(`Actúa como un experto cajero de un supermercado en Costa Rica.
Tengo dos descripciones de productos extraídas de diferentes facturas.
Dime si se refieren al EXACTAMENTE MISMO producto físico (misma marca, mismo ítem, mismo peso/tamaño si se indica).
Ten en cuenta que a veces se abrevian palabras (ej. "T." por "TÍO", "g" por "gramos", etc).

Producto 1: %q
Producto 2: %q

Responde ÚNICAMENTE con la palabra "SI" o "NO". No agregues ninguna otra palabra.`, a, b)
}

// IsAffirmative reports whether answer starts with SI, SÍ or YES, ignoring
// case, surrounding quotes and punctuation.
func IsAffirmative(answer string) bool {
	first := strings.FieldsFunc(answer, func(r rune) bool { return !unicode.IsLetter(r) })
	if len(first) == 0 {
		return false
	}
	switch strings.ToUpper(first[0]) {
	case "SI", "SÍ", "YES":
		return true
	}
	return false
}
