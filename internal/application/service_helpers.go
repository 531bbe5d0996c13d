package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

// requireCapability authenticates and authorizes the actor in one step:
// a missing subject is unauthenticated, an unknown role or a role without
// the capability is forbidden.
func (s *Service) requireCapability(actor Actor, capability domain.Capability) error {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ErrUnauthorized
	}
	role, ok := domain.NormalizeRole(actor.Role)
	if !ok {
		return fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, actor.Role)
	}
	if !domain.HasCapability(role, capability) {
		return fmt.Errorf("%w: role %s lacks %s", domain.ErrForbidden, role, capability)
	}
	return nil
}

// applyScore is the single local trust-score writer. It holds the user's
// trust lock across the read, the versioned update and the history append,
// so the newest history entry always matches the live score.
func (s *Service) applyScore(ctx context.Context, userID string, score float64, reason string) error {
	release, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.applyScoreLocked(ctx, user, score, reason)
}

// applyScoreLocked persists a score plus its history mirror. The caller
// must hold the user's trust lock and pass the user as read under it.
func (s *Service) applyScoreLocked(ctx context.Context, user domain.User, score float64, reason string) error {
	if err := s.users.UpdateTrustScore(ctx, user.ID, score, user.TrustVersion); err != nil {
		return err
	}
	return s.history.Append(ctx, domain.TrustHistoryEntry{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Score:     score,
		Reason:    reason,
		CreatedAt: s.nowFn(),
	})
}
