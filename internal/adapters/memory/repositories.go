package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

// UserRepository is a mutex-guarded map store for tests and local runs.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return domain.ErrConflict
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *UserRepository) UpdateTrustScore(_ context.Context, userID string, score float64, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if user.TrustVersion != expectedVersion {
		return domain.ErrConflict
	}
	user.TrustScore = score
	user.TrustVersion++
	r.users[userID] = user
	return nil
}

func (r *UserRepository) AppendVote(_ context.Context, userID string, vote domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Votes = append(user.Votes, vote)
	r.users[userID] = user
	return nil
}

func (r *UserRepository) addCommunity(userID, communityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, id := range user.Communities {
		if id == communityID {
			return nil
		}
	}
	user.Communities = append(user.Communities, communityID)
	r.users[userID] = user
	return nil
}

// ContributionRepository stores contributions keyed by ID.
type ContributionRepository struct {
	mu            sync.Mutex
	contributions map[string]domain.Contribution
}

func NewContributionRepository() *ContributionRepository {
	return &ContributionRepository{contributions: make(map[string]domain.Contribution)}
}

func (r *ContributionRepository) Create(_ context.Context, contribution domain.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contributions[contribution.ID]; ok {
		return domain.ErrConflict
	}
	r.contributions[contribution.ID] = cloneContribution(contribution)
	return nil
}

func (r *ContributionRepository) GetByID(_ context.Context, contributionID string) (domain.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contribution, ok := r.contributions[contributionID]
	if !ok {
		return domain.Contribution{}, domain.ErrNotFound
	}
	return cloneContribution(contribution), nil
}

func (r *ContributionRepository) ListByAuthor(_ context.Context, authorID string, limit, offset int) ([]domain.Contribution, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Contribution
	for _, c := range r.contributions {
		if c.AuthorID == authorID {
			all = append(all, cloneContribution(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *ContributionRepository) SetOutcome(_ context.Context, contributionID string, status domain.ContributionStatus, feedback domain.Feedback, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	contribution, ok := r.contributions[contributionID]
	if !ok {
		return domain.ErrNotFound
	}
	contribution.Status = status
	fb := feedback
	contribution.Feedback = &fb
	validatedAt := at
	contribution.ValidatedAt = &validatedAt
	r.contributions[contributionID] = contribution
	return nil
}

func (r *ContributionRepository) AppendFlag(_ context.Context, contributionID string, flag domain.Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	contribution, ok := r.contributions[contributionID]
	if !ok {
		return domain.ErrNotFound
	}
	contribution.Flags = append(contribution.Flags, flag)
	r.contributions[contributionID] = contribution
	return nil
}

// CommunityRepository keeps community state plus the user-side membership
// mirror so GrantMembership stays atomic the way the port requires.
type CommunityRepository struct {
	mu          sync.Mutex
	communities map[string]domain.Community
	users       *UserRepository
}

func NewCommunityRepository(users *UserRepository) *CommunityRepository {
	return &CommunityRepository{
		communities: make(map[string]domain.Community),
		users:       users,
	}
}

func (r *CommunityRepository) Create(_ context.Context, community domain.Community) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.communities[community.ID]; ok {
		return domain.ErrConflict
	}
	r.communities[community.ID] = cloneCommunity(community)
	return nil
}

func (r *CommunityRepository) GetByID(_ context.Context, communityID string) (domain.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	community, ok := r.communities[communityID]
	if !ok {
		return domain.Community{}, domain.ErrNotFound
	}
	return cloneCommunity(community), nil
}

func (r *CommunityRepository) ListAll(_ context.Context) ([]domain.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(func(domain.Community) bool { return true }), nil
}

func (r *CommunityRepository) ListVisibleTo(_ context.Context, userID string) ([]domain.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked(func(c domain.Community) bool {
		return c.Type == domain.CommunityPublic || c.HasMember(userID) || c.HasPendingRequest(userID)
	}), nil
}

func (r *CommunityRepository) GrantMembership(_ context.Context, communityID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	community, ok := r.communities[communityID]
	if !ok {
		return domain.ErrNotFound
	}
	if community.HasMember(userID) {
		return nil
	}
	if err := r.users.addCommunity(userID, communityID); err != nil {
		return err
	}
	community.Members = append(community.Members, userID)
	requests := community.JoinRequests[:0]
	for _, req := range community.JoinRequests {
		if req.UserID != userID {
			requests = append(requests, req)
		}
	}
	community.JoinRequests = requests
	r.communities[communityID] = community
	return nil
}

func (r *CommunityRepository) AppendJoinRequest(_ context.Context, communityID string, request domain.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	community, ok := r.communities[communityID]
	if !ok {
		return domain.ErrNotFound
	}
	community.JoinRequests = append(community.JoinRequests, request)
	r.communities[communityID] = community
	return nil
}

func (r *CommunityRepository) sortedLocked(keep func(domain.Community) bool) []domain.Community {
	var all []domain.Community
	for _, c := range r.communities {
		if keep(c) {
			all = append(all, cloneCommunity(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return all
}

// TrustHistoryRepository is an append-only slice per user.
type TrustHistoryRepository struct {
	mu      sync.Mutex
	entries map[string][]domain.TrustHistoryEntry
}

func NewTrustHistoryRepository() *TrustHistoryRepository {
	return &TrustHistoryRepository{entries: make(map[string][]domain.TrustHistoryEntry)}
}

func (r *TrustHistoryRepository) Append(_ context.Context, entry domain.TrustHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.UserID] = append(r.entries[entry.UserID], entry)
	return nil
}

func (r *TrustHistoryRepository) ListByUser(_ context.Context, userID string) ([]domain.TrustHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[userID]
	result := make([]domain.TrustHistoryEntry, len(entries))
	copy(result, entries)
	// Appends happen in time order, so reversing yields newest first.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func cloneUser(user domain.User) domain.User {
	out := user
	out.Communities = append([]string(nil), user.Communities...)
	out.Votes = append([]domain.Vote(nil), user.Votes...)
	return out
}

func cloneContribution(contribution domain.Contribution) domain.Contribution {
	out := contribution
	out.Flags = append([]domain.Flag(nil), contribution.Flags...)
	if contribution.Feedback != nil {
		fb := *contribution.Feedback
		out.Feedback = &fb
	}
	if contribution.ValidatedAt != nil {
		at := *contribution.ValidatedAt
		out.ValidatedAt = &at
	}
	return out
}

func cloneCommunity(community domain.Community) domain.Community {
	out := community
	out.Members = append([]string(nil), community.Members...)
	out.JoinRequests = append([]domain.JoinRequest(nil), community.JoinRequests...)
	return out
}
