package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bilalafzal6349/ssc-system/internal/contracts"
	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

// JoinCommunity admits the caller into a public community immediately, or
// queues a credentialed join request for a private one. Only the public
// path reaches the ledger; a queued request is not yet a trust event.
func (s *Service) JoinCommunity(ctx context.Context, actor Actor, communityID string, credentials *domain.Credentials) (JoinCommunityResult, error) {
	if err := s.requireCapability(actor, domain.CapJoinCommunities); err != nil {
		return JoinCommunityResult{}, err
	}
	community, err := s.communities.GetByID(ctx, strings.TrimSpace(communityID))
	if err != nil {
		return JoinCommunityResult{}, err
	}
	if community.HasMember(actor.SubjectID) {
		return JoinCommunityResult{
			Joined:      true,
			Message:     "already a member",
			CommunityID: community.ID,
		}, nil
	}

	if community.Type == domain.CommunityPrivate {
		if credentials == nil {
			return JoinCommunityResult{}, fmt.Errorf("%w: credentials are required to join a private community", domain.ErrInvalidInput)
		}
		if err := credentials.Validate(); err != nil {
			return JoinCommunityResult{}, err
		}
		if community.HasPendingRequest(actor.SubjectID) {
			return JoinCommunityResult{
				Joined:      false,
				Message:     "join request already pending",
				CommunityID: community.ID,
			}, nil
		}
		request := domain.JoinRequest{
			UserID:      actor.SubjectID,
			Credentials: *credentials,
			RequestedAt: s.nowFn(),
		}
		if err := s.communities.AppendJoinRequest(ctx, community.ID, request); err != nil {
			return JoinCommunityResult{}, err
		}
		s.logger.InfoContext(ctx, "join request queued",
			"operation", "join_community",
			"community_id", community.ID,
			"user_id", actor.SubjectID,
			"request_id", actor.RequestID,
		)
		return JoinCommunityResult{
			Joined:      false,
			Message:     "join request recorded, awaiting community review",
			CommunityID: community.ID,
		}, nil
	}

	receipt, err := s.ledger.Submit(ctx, contracts.LedgerAction{
		Action:      domain.ActionJoinCommunity,
		UserID:      actor.SubjectID,
		CommunityID: community.ID,
	})
	if err != nil {
		return JoinCommunityResult{}, err
	}
	if err := s.communities.GrantMembership(ctx, community.ID, actor.SubjectID); err != nil {
		return JoinCommunityResult{}, err
	}
	return JoinCommunityResult{
		Joined:        true,
		Message:       "joined community",
		CommunityID:   community.ID,
		TransactionID: receipt.TransactionID,
	}, nil
}

// VoteOnUser appends a maintainer verdict against a suspected user. Votes
// accumulate as evidence; nothing here tallies them into a sanction.
func (s *Service) VoteOnUser(ctx context.Context, actor Actor, targetUserID, vote, reason string) (domain.Vote, error) {
	if err := s.requireCapability(actor, domain.CapVoteOnAlerts); err != nil {
		return domain.Vote{}, err
	}
	choice, ok := domain.NormalizeVote(vote)
	if !ok {
		return domain.Vote{}, fmt.Errorf("%w: vote must be approve or reject", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Vote{}, fmt.Errorf("%w: vote reason is required", domain.ErrInvalidInput)
	}
	target, err := s.users.GetByID(ctx, strings.TrimSpace(targetUserID))
	if err != nil {
		return domain.Vote{}, err
	}

	if _, err := s.ledger.Submit(ctx, contracts.LedgerAction{
		Action: domain.ActionVoteMalicious,
		UserID: target.ID,
		Vote:   string(choice),
		Voter:  actor.SubjectID,
		Reason: reason,
	}); err != nil {
		return domain.Vote{}, err
	}

	record := domain.Vote{
		Vote:    choice,
		Reason:  reason,
		VoterID: actor.SubjectID,
		CastAt:  s.nowFn(),
	}
	if err := s.users.AppendVote(ctx, target.ID, record); err != nil {
		return domain.Vote{}, err
	}
	return record, nil
}

// ApplyPenalty subtracts a penalty from the target's score. The trust lock
// is held across the read, the ledger submit and the local write so a
// concurrent penalty cannot compute from a stale score.
func (s *Service) ApplyPenalty(ctx context.Context, actor Actor, targetUserID string, penalty float64, reason string) (float64, error) {
	if err := s.requireCapability(actor, domain.CapApplyPenalties); err != nil {
		return 0, err
	}
	if strings.TrimSpace(reason) == "" {
		return 0, fmt.Errorf("%w: penalty reason is required", domain.ErrInvalidInput)
	}
	targetUserID = strings.TrimSpace(targetUserID)

	release, err := s.locks.Lock(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	defer release()

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	newScore, err := domain.ComputePenalizedScore(target.TrustScore, penalty)
	if err != nil {
		return 0, err
	}

	if _, err := s.ledger.Submit(ctx, contracts.LedgerAction{
		Action:     domain.ActionApplyPenalty,
		UserID:     target.ID,
		Reason:     reason,
		Penalty:    &penalty,
		TrustScore: &newScore,
	}); err != nil {
		return 0, err
	}

	if err := s.applyScoreLocked(ctx, target, newScore, "Penalty: "+reason); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "penalty applied",
		"operation", "apply_penalty",
		"user_id", target.ID,
		"penalty", penalty,
		"new_score", newScore,
		"request_id", actor.RequestID,
	)
	return newScore, nil
}

// ListCommunities shows everything to roles that may view all communities
// and a visibility-filtered slice to everyone else.
func (s *Service) ListCommunities(ctx context.Context, actor Actor) ([]domain.Community, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	role, _ := domain.NormalizeRole(actor.Role)
	if domain.HasCapability(role, domain.CapViewAllCommunities) {
		return s.communities.ListAll(ctx)
	}
	return s.communities.ListVisibleTo(ctx, actor.SubjectID)
}

// FetchLedgerLog proxies the external audit trail for admin review.
func (s *Service) FetchLedgerLog(ctx context.Context, actor Actor) ([]contracts.LedgerReceipt, error) {
	if err := s.requireCapability(actor, domain.CapViewLedgerLog); err != nil {
		return nil, err
	}
	return s.ledger.FetchLog(ctx)
}
