package version

// Metadata keys written by reviewers. The store treats metadata as opaque;
// these names are the contract between the reviewer and the selector.
const (
	MetaFidelityScore    = "fidelity_score"
	MetaReadabilityScore = "readability_score"
	MetaGrammarScore     = "grammar_score"
	MetaOriginalityScore = "originality_score"
	MetaFeedback         = "feedback"
	MetaSuggestions      = "suggestions"
	MetaSimulated        = "simulated_review"
)

// Scores holds the four review dimensions extracted from a reviewed record.
type Scores struct {
	Fidelity    float64
	Readability float64
	Grammar     float64
	Originality float64
}

// Composite is the unweighted average of the four dimensions.
func (s Scores) Composite() float64 {
	return (s.Fidelity + s.Readability + s.Grammar + s.Originality) / 4
}

// ExtractScores reads the review dimensions from an open metadata map.
// The scoring policy is a replaceable oracle, so unknown fields are ignored.
// The second return is false unless all four dimensions are present and
// numeric; a partially scored record cannot be ranked.
func ExtractScores(metadata map[string]any) (Scores, bool) {
	if metadata == nil {
		return Scores{}, false
	}
	var s Scores
	complete := true
	read := func(key string, dst *float64) {
		switch n := metadata[key].(type) {
		case float64:
			*dst = n
		case float32:
			*dst = float64(n)
		case int:
			*dst = float64(n)
		case int64:
			*dst = float64(n)
		default:
			complete = false
		}
	}
	read(MetaFidelityScore, &s.Fidelity)
	read(MetaReadabilityScore, &s.Readability)
	read(MetaGrammarScore, &s.Grammar)
	read(MetaOriginalityScore, &s.Originality)
	return s, complete
}
