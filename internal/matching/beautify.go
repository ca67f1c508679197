package matching

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const maxBeautifiedLen = 120

// NameHint carries line-item context that helps disambiguate digit groups in
// a raw description, e.g. whether "520 00 G" is 520 g or 52000 g.
type NameHint struct {
	Quantity string
	Unit     string
}

// Beautifier rewrites register-style product descriptions into readable
// names. It is best effort: any failure returns the input unchanged.
type Beautifier struct {
	log     *slog.Logger
	gen     Generator
	timeout time.Duration
}

// NewBeautifier creates a Beautifier. A nil gen disables rewriting.
func NewBeautifier(logger *slog.Logger, gen Generator, timeout time.Duration) *Beautifier {
	if timeout <= 0 {
		timeout = DefaultAdjudicationTimeout
	}
	return &Beautifier{
		log:     logger.With("component", "beautifier"),
		gen:     gen,
		timeout: timeout,
	}
}

// Beautify returns a readable form of raw, or raw itself when the backend is
// unavailable or its answer does not look like a product name.
func (b *Beautifier) Beautify(ctx context.Context, raw string, hint NameHint) string {
	raw = strings.TrimSpace(raw)
	if b == nil || b.gen == nil || raw == "" {
		return raw
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	answer, err := b.gen.Generate(ctx, beautifyPrompt(raw, hint))
	if err != nil {
		b.log.WarnContext(ctx, "beautify failed, keeping original",
			slog.String("name", raw),
			slog.String("error", err.Error()),
		)
		return raw
	}

	cleaned, ok := plausibleName(answer, raw)
	if !ok {
		b.log.WarnContext(ctx, "beautify answer rejected",
			slog.String("name", raw),
			slog.String("answer", answer),
		)
		return raw
	}
	if cleaned != raw {
		b.log.DebugContext(ctx, "name beautified", slog.String("from", raw), slog.String("to", cleaned))
	}
	return cleaned
}

func beautifyPrompt(raw string, hint NameHint) string {
	var ctxLine string
	if hint.Quantity != "" || hint.Unit != "" {
		ctxLine = fmt.Sprintf("\nContexto de la factura: cantidad %q, unidad de medida %q.", hint.Quantity, hint.Unit)
	}
	return fmt.Sprintf(`Eres un asistente que limpia nombres de productos de facturas electrónicas de supermercados en Costa Rica.
Convierte la descripción técnica en un nombre legible para un comprador: marca y producto en formato título, presentación al final en minúscula (g, kg, ml, l, unid).
Las cajas registradoras a veces separan el peso en dos grupos, por ejemplo "520 00 G" significa 520 gramos.
No inventes información que no esté en la descripción.%s

Descripción: %q

Responde ÚNICAMENTE con el nombre limpio, en una sola línea, sin comillas ni explicaciones.`, ctxLine, raw)
}

// plausibleName trims quotes from answer and rejects empty, multi-line or
// overly long responses.
func plausibleName(answer, raw string) (string, bool) {
	answer = strings.TrimSpace(answer)
	answer = strings.Trim(answer, "\"'`")
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.ContainsAny(answer, "\r\n") {
		return "", false
	}
	n := utf8.RuneCountInString(answer)
	if n > maxBeautifiedLen || n > 2*utf8.RuneCountInString(raw)+20 {
		return "", false
	}
	return answer, true
}
