package domain

import "fmt"

// Weights of the initial trust formula. They sum to 1.0; the bias is an
// additive adjustment on top, not a fifth weighted term, so the raw result
// can exceed 1.0 and callers clamp before persisting.
const (
	WeightPreTrust        = 0.30
	WeightLegalAgreements = 0.20
	WeightCommunityType   = 0.20
	WeightCapabilities    = 0.30

	DefaultInitialBias = 0.05

	DefaultSubmissionThreshold = 0.5
)

// ComputeInitialScore evaluates the weighted initial trust formula.
// Each of the four primary inputs must be within [0,1].
func ComputeInitialScore(preTrust, legalAgreements, communityType, capabilities, bias float64) (float64, error) {
	for name, v := range map[string]float64{
		"pre_trust":        preTrust,
		"legal_agreements": legalAgreements,
		"community_type":   communityType,
		"capabilities":     capabilities,
	} {
		if v < 0 || v > 1 {
			return 0, fmt.Errorf("%w: %s must be within [0,1]", ErrInvalidInput, name)
		}
	}
	score := WeightPreTrust*preTrust +
		WeightLegalAgreements*legalAgreements +
		WeightCommunityType*communityType +
		WeightCapabilities*capabilities +
		bias
	return score, nil
}

// ComputePenalizedScore subtracts a penalty from the current score,
// clamping at zero. The penalty must be within [0,1].
func ComputePenalizedScore(current, penalty float64) (float64, error) {
	if penalty < 0 || penalty > 1 {
		return 0, fmt.Errorf("%w: penalty must be within [0,1]", ErrInvalidInput)
	}
	next := current - penalty
	if next < 0 {
		return 0, nil
	}
	return next, nil
}

func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ValidateFeedback checks the reviewer feedback attached to a terminal
// contribution decision.
func ValidateFeedback(f Feedback) error {
	if f.Quality < 0 || f.Quality > 1 {
		return fmt.Errorf("%w: feedback quality must be within [0,1]", ErrInvalidInput)
	}
	if f.Compliance < 0 || f.Compliance > 1 {
		return fmt.Errorf("%w: feedback compliance must be within [0,1]", ErrInvalidInput)
	}
	return nil
}
