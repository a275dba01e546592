package autoapply

import "math"

// ScoreCompleteness derives the completeness summary from mapped responses.
// Deterministic and side-effect free; Analyze and Preview share it.
// Zero fields scores 0% and not ready. Readiness requires every required
// field to be resolved; unresolved optional fields do not block it.
func ScoreCompleteness(responses []FieldResponse) ProfileCompleteness {
	total := len(responses)
	if total == 0 {
		return ProfileCompleteness{OverallPercentage: 0, ReadyForAutoApply: false}
	}

	ready := true
	for _, r := range responses {
		if r.Field.Required && !r.Resolved() {
			ready = false
			break
		}
	}

	return ProfileCompleteness{
		OverallPercentage: int(math.Round(100 * float64(CountResolved(responses)) / float64(total))),
		ReadyForAutoApply: ready,
	}
}

// CountResolved counts responses that carry a usable value.
func CountResolved(responses []FieldResponse) int {
	n := 0
	for _, r := range responses {
		if r.Resolved() {
			n++
		}
	}
	return n
}

// BuildPreview assembles the preview payload for a mapped form.
func BuildPreview(responses []FieldResponse) *PreviewPayload {
	return &PreviewPayload{
		TotalFields:         len(responses),
		FieldsWithResponses: CountResolved(responses),
		Completeness:        ScoreCompleteness(responses),
		FieldPreviews:       responses,
	}
}
