package application

import (
	"context"
	"strings"

	"github.com/bilalafzal6349/ssc-system/internal/contracts"
	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

// InitializeTrust evaluates the weighted onboarding formula for a user and
// persists the clamped result after the ledger acknowledges it.
func (s *Service) InitializeTrust(ctx context.Context, actor Actor, input InitializeTrustInput) (float64, error) {
	if err := s.requireCapability(actor, domain.CapInitializeTrust); err != nil {
		return 0, err
	}
	userID := strings.TrimSpace(input.UserID)
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return 0, err
	}

	raw, err := domain.ComputeInitialScore(
		input.PreTrust,
		input.LegalAgreements,
		input.CommunityType,
		input.Capabilities,
		s.cfg.InitialTrustBias,
	)
	if err != nil {
		return 0, err
	}
	score := domain.ClampScore(raw)

	if _, err := s.ledger.Submit(ctx, contracts.LedgerAction{
		Action:     domain.ActionInitializeTrust,
		UserID:     userID,
		TrustScore: &score,
	}); err != nil {
		return 0, err
	}

	if err := s.applyScore(ctx, userID, score, "Initial trust score"); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "trust initialized",
		"operation", "initialize_trust",
		"user_id", userID,
		"score", score,
		"request_id", actor.RequestID,
	)
	return score, nil
}

// GetTrustProfile returns a user's live score with its history, newest
// first. Users may read their own profile; validators may read anyone's.
func (s *Service) GetTrustProfile(ctx context.Context, actor Actor, userID string) (TrustProfile, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return TrustProfile{}, domain.ErrUnauthorized
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = actor.SubjectID
	}
	role, _ := domain.NormalizeRole(actor.Role)
	if userID != actor.SubjectID && !domain.HasCapability(role, domain.CapValidateContributions) {
		return TrustProfile{}, domain.ErrForbidden
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return TrustProfile{}, err
	}
	entries, err := s.history.ListByUser(ctx, userID)
	if err != nil {
		return TrustProfile{}, err
	}
	profile := TrustProfile{
		UserID:     user.ID,
		TrustScore: user.TrustScore,
		History:    make([]TrustHistoryEntryPayload, 0, len(entries)),
	}
	for _, e := range entries {
		profile.History = append(profile.History, TrustHistoryEntryPayload{
			Score:     e.Score,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}
	return profile, nil
}
