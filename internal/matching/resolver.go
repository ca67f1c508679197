// Package matching decides whether a free-text product description refers to
// a product already in the catalog.
package matching

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// Default policy values. Changing them changes which existing catalog
// entries merge, so they are only overridden through configuration.
const (
	DefaultFuzzyMergeThreshold = 92
	DefaultGrayAreaThreshold   = 65
	DefaultAdjudicationTimeout = 15 * time.Second
)

// Adjudicator decides whether two descriptions denote the same physical
// product. Implementations make exactly one attempt.
type Adjudicator interface {
	SameProduct(ctx context.Context, a, b string) (bool, error)
}

// Config holds resolver thresholds.
type Config struct {
	FuzzyMergeThreshold int
	GrayAreaThreshold   int
	AdjudicationTimeout time.Duration
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		FuzzyMergeThreshold: DefaultFuzzyMergeThreshold,
		GrayAreaThreshold:   DefaultGrayAreaThreshold,
		AdjudicationTimeout: DefaultAdjudicationTimeout,
	}
}

// Resolver runs the fuzzy and adjudication tiers of identity resolution.
// Exact barcode and exact name lookups are done by the caller.
type Resolver struct {
	log         *slog.Logger
	adjudicator Adjudicator
	cfg         Config
}

// NewResolver creates a Resolver. A nil adjudicator makes every gray-area
// candidate resolve to a new product.
func NewResolver(logger *slog.Logger, adjudicator Adjudicator, cfg Config) *Resolver {
	if cfg.AdjudicationTimeout <= 0 {
		cfg.AdjudicationTimeout = DefaultAdjudicationTimeout
	}
	return &Resolver{
		log:         logger.With("component", "resolver"),
		adjudicator: adjudicator,
		cfg:         cfg,
	}
}

// Resolve matches candidate against catalog. It never fails: adjudication
// errors resolve to a new product.
func (r *Resolver) Resolve(ctx context.Context, candidate string, catalog []domain.CatalogEntry) domain.MatchResult {
	if len(catalog) == 0 {
		return domain.MatchResult{Action: domain.MatchNew, Method: domain.MethodNone}
	}

	best, score := bestMatch(domain.NormalizeName(candidate), catalog)

	r.log.DebugContext(ctx, "fuzzy match",
		slog.String("candidate", candidate),
		slog.String("best", best.Name),
		slog.Int64("best_id", best.ID),
		slog.Int("score", score),
	)

	switch {
	case score >= r.cfg.FuzzyMergeThreshold:
		return domain.MatchResult{
			Action:     domain.MatchMerge,
			TargetID:   best.ID,
			Confidence: score,
			Method:     domain.MethodFuzzy,
		}
	case score < r.cfg.GrayAreaThreshold:
		return domain.MatchResult{Action: domain.MatchNew, Confidence: score, Method: domain.MethodFuzzy}
	}

	if r.adjudicate(ctx, candidate, best.Name) {
		return domain.MatchResult{
			Action:     domain.MatchMerge,
			TargetID:   best.ID,
			Confidence: score,
			Method:     domain.MethodLLM,
		}
	}
	return domain.MatchResult{Action: domain.MatchNew, Confidence: score, Method: domain.MethodLLMRejected}
}

func (r *Resolver) adjudicate(ctx context.Context, candidate, existing string) bool {
	if r.adjudicator == nil {
		r.log.WarnContext(ctx, "gray-area match without adjudicator",
			slog.String("candidate", candidate),
			slog.String("existing", existing),
		)
		return false
	}

	actx, cancel := context.WithTimeout(ctx, r.cfg.AdjudicationTimeout)
	defer cancel()

	same, err := r.adjudicator.SameProduct(actx, candidate, existing)
	if err != nil {
		r.log.WarnContext(ctx, "adjudication failed, treating as different products",
			slog.String("candidate", candidate),
			slog.String("existing", existing),
			slog.String("error", err.Error()),
		)
		return false
	}

	r.log.InfoContext(ctx, "adjudication answered",
		slog.String("candidate", candidate),
		slog.String("existing", existing),
		slog.Bool("same", same),
	)
	return same
}

// bestMatch returns the highest-scoring entry; ties keep the earliest one.
func bestMatch(normalized string, catalog []domain.CatalogEntry) (domain.CatalogEntry, int) {
	best, bestScore := catalog[0], -1
	for _, entry := range catalog {
		score := TokenSetRatio(normalized, domain.NormalizeName(entry.Name))
		if score > bestScore {
			best, bestScore = entry, score
		}
	}
	return best, bestScore
}
