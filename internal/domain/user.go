package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleMaintainer Role = "maintainer"
	RoleAdmin      Role = "admin"
)

func NormalizeRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleUser):
		return RoleUser, true
	case string(RoleMaintainer):
		return RoleMaintainer, true
	case string(RoleAdmin):
		return RoleAdmin, true
	default:
		return "", false
	}
}

type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
)

func NormalizeVote(raw string) (VoteChoice, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(VoteApprove):
		return VoteApprove, true
	case string(VoteReject):
		return VoteReject, true
	default:
		return "", false
	}
}

// Vote records a maintainer's suspicion verdict against a user. Votes are
// append-only and never aggregated into an automatic decision here.
type Vote struct {
	Vote    VoteChoice `json:"vote"`
	Reason  string     `json:"reason"`
	VoterID string     `json:"voter_id"`
	CastAt  time.Time  `json:"cast_at"`
}

// User is the engine's view of a platform account. TrustScore is the single
// authoritative mutable field; TrustVersion is bumped on every score write
// and backs the optimistic concurrency check in storage.
type User struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	TrustScore   float64   `json:"trust_score"`
	TrustVersion int64     `json:"-"`
	Communities  []string  `json:"communities"`
	Votes        []Vote    `json:"votes,omitempty"`
	GithubHandle string    `json:"github_handle,omitempty"`
	ContactInfo  string    `json:"contact_info,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TrustHistoryEntry is the local append-only mirror of a score change.
// The latest entry for a user always equals the user's live TrustScore.
type TrustHistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
