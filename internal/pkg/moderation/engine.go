package moderation

import (
	"fmt"

	"github.com/mkravets/ArtPeak/internal/pkg/classifier"
)

// Thresholds of the decision rules, in the order they are evaluated.
const (
	AdultRejectThreshold   = 0.70
	LowSafeScore           = 0.02
	AdultExemptionCeiling  = 0.10
	ViolenceThreshold      = 0.40
	NudityThreshold        = 0.40
	GoreThreshold          = 0.70
	CombinedScoreThreshold = 0.70
)

type Verdict int

const (
	VerdictAccept Verdict = iota
	VerdictRejectAuto
	VerdictRejectNeedsReview
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "accept"
	case VerdictRejectAuto:
		return "reject-auto"
	case VerdictRejectNeedsReview:
		return "reject-needs-review"
	}
	return "unknown"
}

// Decision carries the verdict plus everything needed for audit logging.
type Decision struct {
	Verdict           Verdict
	Rule              int // 1-based rule that fired, 0 for precheck/failure outcomes
	TrippedCategories []string
	Scores            classifier.Scores
	AdultConfidence   float64
}

// Decide fuses the two classifier signals into one verdict. Rules fire in
// strict priority order; the first match wins.
//
// Rule 2 intentionally precedes the category thresholds: a very low safe
// score with a quiet adult classifier is treated as a primary-classifier
// false positive and accepted. Preserved as observed in production.
func Decide(scores classifier.Scores, adult classifier.AdultResult) Decision {
	confidence := adult.Confidence
	if !adult.Available {
		confidence = 0
	}

	d := Decision{Scores: scores, AdultConfidence: confidence}

	// Rule 1: the specialized classifier is sure.
	if confidence >= AdultRejectThreshold {
		d.Verdict = VerdictRejectAuto
		d.Rule = 1
		d.TrippedCategories = []string{"adult"}
		return d
	}

	// Rule 2: false-positive exemption.
	if scores.Safe < LowSafeScore && confidence < AdultExemptionCeiling {
		d.Verdict = VerdictAccept
		d.Rule = 2
		return d
	}

	// Rule 3: per-category thresholds.
	var tripped []string
	if scores.Violence > ViolenceThreshold {
		tripped = append(tripped, fmt.Sprintf("violence (%.1f%%)", scores.Violence*100))
	}
	if scores.Nudity > NudityThreshold {
		tripped = append(tripped, fmt.Sprintf("nudity (%.1f%%)", scores.Nudity*100))
	}
	if scores.Gore > GoreThreshold {
		tripped = append(tripped, fmt.Sprintf("gore (%.1f%%)", scores.Gore*100))
	}
	if len(tripped) > 0 {
		d.Verdict = VerdictRejectAuto
		d.Rule = 3
		d.TrippedCategories = tripped
		return d
	}

	// Rule 4: nothing looked safe.
	if scores.Safe < LowSafeScore {
		d.Verdict = VerdictRejectAuto
		d.Rule = 4
		return d
	}

	// Rule 5: individually quiet categories adding up.
	if scores.Violence+scores.Nudity+scores.Gore > CombinedScoreThreshold {
		d.Verdict = VerdictRejectAuto
		d.Rule = 5
		return d
	}

	d.Verdict = VerdictAccept
	d.Rule = 6
	return d
}

// FailClosed is the decision used when the classification service itself
// errors: never accept, route to human review.
func FailClosed() Decision {
	return Decision{Verdict: VerdictRejectNeedsReview}
}
