package domain

import (
	"errors"
	"math"
	"testing"
)

func TestComputeInitialScoreWeightsAndBias(t *testing.T) {
	t.Parallel()

	score, err := ComputeInitialScore(0.8, 1.0, 0.5, 0.6, DefaultInitialBias)
	if err != nil {
		t.Fatalf("compute initial score: %v", err)
	}
	want := 0.30*0.8 + 0.20*1.0 + 0.20*0.5 + 0.30*0.6 + 0.05
	if math.Abs(score-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, score)
	}
}

func TestComputeInitialScoreCanExceedOneBeforeClamp(t *testing.T) {
	t.Parallel()

	score, err := ComputeInitialScore(1, 1, 1, 1, DefaultInitialBias)
	if err != nil {
		t.Fatalf("compute initial score: %v", err)
	}
	if score <= 1 {
		t.Fatalf("expected raw score above 1, got %v", score)
	}
	if clamped := ClampScore(score); clamped != 1 {
		t.Fatalf("expected clamp to 1, got %v", clamped)
	}
}

func TestComputeInitialScoreRejectsOutOfRangeInputs(t *testing.T) {
	t.Parallel()

	cases := [][4]float64{
		{-0.1, 0, 0, 0},
		{0, 1.1, 0, 0},
		{0, 0, -1, 0},
		{0, 0, 0, 2},
	}
	for _, c := range cases {
		if _, err := ComputeInitialScore(c[0], c[1], c[2], c[3], 0); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %v, got %v", c, err)
		}
	}
}

func TestComputePenalizedScoreFloorsAtZero(t *testing.T) {
	t.Parallel()

	score, err := ComputePenalizedScore(0.3, 0.5)
	if err != nil {
		t.Fatalf("compute penalized score: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected floor at 0, got %v", score)
	}

	score, err = ComputePenalizedScore(0.8, 0.25)
	if err != nil {
		t.Fatalf("compute penalized score: %v", err)
	}
	if math.Abs(score-0.55) > 1e-9 {
		t.Fatalf("expected 0.55, got %v", score)
	}
}

func TestComputePenalizedScoreRejectsOutOfRangePenalty(t *testing.T) {
	t.Parallel()

	if _, err := ComputePenalizedScore(0.5, -0.1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative penalty, got %v", err)
	}
	if _, err := ComputePenalizedScore(0.5, 1.5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for penalty above 1, got %v", err)
	}
}

func TestValidateFeedback(t *testing.T) {
	t.Parallel()

	if err := ValidateFeedback(Feedback{Quality: 0.9, Compliance: 1}); err != nil {
		t.Fatalf("expected valid feedback, got %v", err)
	}
	if err := ValidateFeedback(Feedback{Quality: 1.2, Compliance: 0.5}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for quality, got %v", err)
	}
	if err := ValidateFeedback(Feedback{Quality: 0.5, Compliance: -0.2}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for compliance, got %v", err)
	}
}

func TestHasCapabilityTable(t *testing.T) {
	t.Parallel()

	if !HasCapability(RoleAdmin, CapFlagContributions) {
		t.Fatalf("expected admin to hold flag capability")
	}
	if !HasCapability(RoleMaintainer, CapVoteOnAlerts) {
		t.Fatalf("expected maintainer to hold vote capability")
	}
	if HasCapability(RoleUser, CapValidateContributions) {
		t.Fatalf("expected plain user to lack validate capability")
	}
	if HasCapability(RoleMaintainer, CapApplyPenalties) {
		t.Fatalf("expected maintainer to lack penalty capability")
	}
	if HasCapability(Role("ghost"), CapSubmitContributions) {
		t.Fatalf("expected unknown role to lack every capability")
	}
}

func TestNormalizeDecisionAcceptsTerminalOnly(t *testing.T) {
	t.Parallel()

	if status, ok := NormalizeDecision(" Approved "); !ok || status != ContributionApproved {
		t.Fatalf("expected approved, got %v %v", status, ok)
	}
	if status, ok := NormalizeDecision("rejected"); !ok || status != ContributionRejected {
		t.Fatalf("expected rejected, got %v %v", status, ok)
	}
	if _, ok := NormalizeDecision("pending"); ok {
		t.Fatalf("expected pending to be rejected as a decision")
	}
}
