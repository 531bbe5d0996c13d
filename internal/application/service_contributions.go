package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bilalafzal6349/ssc-system/internal/contracts"
	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

// SubmitContribution materializes a change on the code host and records the
// contribution in pending state. The ledger write happens before the local
// insert so a ledger outage never leaves a contribution without its audit
// record.
func (s *Service) SubmitContribution(ctx context.Context, actor Actor, input SubmitContributionInput) (domain.Contribution, error) {
	if err := s.requireCapability(actor, domain.CapSubmitContributions); err != nil {
		return domain.Contribution{}, err
	}
	if strings.TrimSpace(input.RepositoryID) == "" || strings.TrimSpace(input.Code) == "" {
		return domain.Contribution{}, fmt.Errorf("%w: repository_id and code are required", domain.ErrInvalidInput)
	}

	author, err := s.users.GetByID(ctx, actor.SubjectID)
	if err != nil {
		return domain.Contribution{}, err
	}
	if author.TrustScore < s.cfg.SubmissionThreshold {
		return domain.Contribution{}, fmt.Errorf("%w: score %.2f is below the submission threshold %.2f",
			domain.ErrInsufficientTrust, author.TrustScore, s.cfg.SubmissionThreshold)
	}

	ref, err := s.codeHost.CreateChange(ctx, input.RepositoryID, author.ID, input.Code, input.Description)
	if err != nil {
		return domain.Contribution{}, err
	}

	contributionID := uuid.NewString()
	if _, err := s.ledger.Submit(ctx, contracts.LedgerAction{
		Action:         domain.ActionSubmitContribution,
		ContributionID: contributionID,
		UserID:         author.ID,
		RepositoryID:   input.RepositoryID,
	}); err != nil {
		return domain.Contribution{}, err
	}

	contribution := domain.Contribution{
		ID:                contributionID,
		AuthorID:          author.ID,
		Repository:        input.RepositoryID,
		ExternalChangeRef: ref.ID,
		Status:            domain.ContributionPending,
		Description:       input.Description,
		CreatedAt:         s.nowFn(),
	}
	if err := s.contributions.Create(ctx, contribution); err != nil {
		return domain.Contribution{}, err
	}
	return contribution, nil
}

// ValidateContribution applies a maintainer decision. The ledger owns the
// resulting trust math: the new score arrives in the receipt and is only
// then persisted locally, under the author's trust lock, together with its
// history mirror.
func (s *Service) ValidateContribution(ctx context.Context, actor Actor, input ValidateContributionInput) (domain.Contribution, float64, error) {
	if err := s.requireCapability(actor, domain.CapValidateContributions); err != nil {
		return domain.Contribution{}, 0, err
	}
	status, ok := domain.NormalizeDecision(input.Status)
	if !ok {
		return domain.Contribution{}, 0, fmt.Errorf("%w: status must be approved or rejected", domain.ErrInvalidInput)
	}
	feedback := domain.Feedback{Quality: input.Quality, Compliance: input.Compliance, Reason: input.Reason}
	if err := domain.ValidateFeedback(feedback); err != nil {
		return domain.Contribution{}, 0, err
	}

	contribution, err := s.contributions.GetByID(ctx, strings.TrimSpace(input.ContributionID))
	if err != nil {
		return domain.Contribution{}, 0, err
	}
	if contribution.IsTerminal() {
		s.logger.WarnContext(ctx, "re-validating terminal contribution",
			"operation", "validate_contribution",
			"contribution_id", contribution.ID,
			"previous_status", string(contribution.Status),
			"request_id", actor.RequestID,
		)
	}

	receipt, err := s.ledger.Submit(ctx, contracts.LedgerAction{
		Action: domain.ActionUpdateTrust,
		UserID: contribution.AuthorID,
		Status: string(status),
		Feedback: &contracts.FeedbackPayload{
			Quality:    feedback.Quality,
			Compliance: feedback.Compliance,
			Reason:     feedback.Reason,
		},
	})
	if err != nil {
		return domain.Contribution{}, 0, err
	}
	if receipt.NewScore == nil {
		return domain.Contribution{}, 0, fmt.Errorf("%w: update_trust receipt missing new_score", domain.ErrLedgerUnavailable)
	}

	newScore := domain.ClampScore(*receipt.NewScore)
	reason := fmt.Sprintf("Contribution %s: %s", status, feedback.Reason)
	if err := s.applyScore(ctx, contribution.AuthorID, newScore, reason); err != nil {
		return domain.Contribution{}, 0, err
	}

	now := s.nowFn()
	if err := s.contributions.SetOutcome(ctx, contribution.ID, status, feedback, now); err != nil {
		return domain.Contribution{}, 0, err
	}
	contribution.Status = status
	contribution.Feedback = &feedback
	contribution.ValidatedAt = &now
	return contribution, newScore, nil
}

// FlagContribution appends a suspicion flag without touching status.
func (s *Service) FlagContribution(ctx context.Context, actor Actor, contributionID, reason string) (domain.Contribution, error) {
	if err := s.requireCapability(actor, domain.CapFlagContributions); err != nil {
		return domain.Contribution{}, err
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Contribution{}, fmt.Errorf("%w: flag reason is required", domain.ErrInvalidInput)
	}
	contribution, err := s.contributions.GetByID(ctx, strings.TrimSpace(contributionID))
	if err != nil {
		return domain.Contribution{}, err
	}

	if _, err := s.ledger.Submit(ctx, contracts.LedgerAction{
		Action:         domain.ActionFlagContribution,
		ContributionID: contribution.ID,
		Reason:         reason,
		FlaggedBy:      actor.SubjectID,
	}); err != nil {
		return domain.Contribution{}, err
	}

	flag := domain.Flag{Reason: reason, FlaggedBy: actor.SubjectID, FlaggedAt: s.nowFn()}
	if err := s.contributions.AppendFlag(ctx, contribution.ID, flag); err != nil {
		return domain.Contribution{}, err
	}
	contribution.Flags = append(contribution.Flags, flag)
	return contribution, nil
}

func (s *Service) GetContribution(ctx context.Context, actor Actor, contributionID string) (domain.Contribution, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Contribution{}, domain.ErrUnauthorized
	}
	contribution, err := s.contributions.GetByID(ctx, strings.TrimSpace(contributionID))
	if err != nil {
		return domain.Contribution{}, err
	}
	role, _ := domain.NormalizeRole(actor.Role)
	if contribution.AuthorID != actor.SubjectID && !domain.HasCapability(role, domain.CapValidateContributions) {
		return domain.Contribution{}, domain.ErrForbidden
	}
	return contribution, nil
}

func (s *Service) ListContributions(ctx context.Context, actor Actor, authorID string, limit, offset int) (ContributionListOutput, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return ContributionListOutput{}, domain.ErrUnauthorized
	}
	authorID = strings.TrimSpace(authorID)
	role, _ := domain.NormalizeRole(actor.Role)
	if authorID == "" || !domain.HasCapability(role, domain.CapValidateContributions) {
		authorID = actor.SubjectID
	}
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.contributions.ListByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return ContributionListOutput{}, err
	}
	out := ContributionListOutput{Total: total, Items: make([]ContributionItem, 0, len(items))}
	for _, c := range items {
		out.Items = append(out.Items, ContributionItem{
			ID:                c.ID,
			Repository:        c.Repository,
			ExternalChangeRef: c.ExternalChangeRef,
			Status:            string(c.Status),
			Description:       c.Description,
			FlagCount:         len(c.Flags),
			CreatedAt:         c.CreatedAt,
			ValidatedAt:       c.ValidatedAt,
		})
	}
	return out, nil
}
