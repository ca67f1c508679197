package domain

// MatchAction is the outcome of identity resolution.
type MatchAction string

const (
	MatchMerge MatchAction = "MERGE"
	MatchNew   MatchAction = "NEW"
)

// MatchMethod records which tier produced a decision.
type MatchMethod string

const (
	MethodNone        MatchMethod = ""
	MethodFuzzy       MatchMethod = "FUZZY"
	MethodLLM         MatchMethod = "LLM"
	MethodLLMRejected MatchMethod = "LLM_REJECTED"
)

// MatchResult is the decision for one candidate description. TargetID is set
// only for MatchMerge.
type MatchResult struct {
	Action     MatchAction
	TargetID   int64
	Confidence int
	Method     MatchMethod
}

// IsMerge reports whether the candidate resolved to an existing product.
func (m MatchResult) IsMerge() bool { return m.Action == MatchMerge }
