package ports

import (
	"context"
	"time"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, userID string) (domain.User, error)
	// UpdateTrustScore persists a new score iff the stored TrustVersion
	// still matches expectedVersion; a mismatch reports domain.ErrConflict.
	UpdateTrustScore(ctx context.Context, userID string, score float64, expectedVersion int64) error
	AppendVote(ctx context.Context, userID string, vote domain.Vote) error
}

type ContributionRepository interface {
	Create(ctx context.Context, contribution domain.Contribution) error
	GetByID(ctx context.Context, contributionID string) (domain.Contribution, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]domain.Contribution, int, error)
	SetOutcome(ctx context.Context, contributionID string, status domain.ContributionStatus, feedback domain.Feedback, at time.Time) error
	AppendFlag(ctx context.Context, contributionID string, flag domain.Flag) error
}

type CommunityRepository interface {
	Create(ctx context.Context, community domain.Community) error
	GetByID(ctx context.Context, communityID string) (domain.Community, error)
	ListAll(ctx context.Context) ([]domain.Community, error)
	// ListVisibleTo returns public communities plus any where the user is a
	// member or has a pending join request.
	ListVisibleTo(ctx context.Context, userID string) ([]domain.Community, error)
	// GrantMembership records membership on both the community's member
	// list and the user's community set in one atomic step; a failure
	// leaves neither side changed. Granting an existing membership is a
	// no-op.
	GrantMembership(ctx context.Context, communityID, userID string) error
	AppendJoinRequest(ctx context.Context, communityID string, request domain.JoinRequest) error
}

type TrustHistoryRepository interface {
	Append(ctx context.Context, entry domain.TrustHistoryEntry) error
	// ListByUser returns entries newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.TrustHistoryEntry, error)
}
