package domain

import (
	"strings"
	"time"
)

type ContributionStatus string

const (
	ContributionPending  ContributionStatus = "pending"
	ContributionApproved ContributionStatus = "approved"
	ContributionRejected ContributionStatus = "rejected"
)

// NormalizeDecision accepts only the two terminal statuses a reviewer may
// assign; a contribution never transitions back to pending.
func NormalizeDecision(raw string) (ContributionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ContributionApproved):
		return ContributionApproved, true
	case string(ContributionRejected):
		return ContributionRejected, true
	default:
		return "", false
	}
}

// Feedback is set exactly once, at the approved/rejected transition.
type Feedback struct {
	Quality    float64 `json:"quality"`
	Compliance float64 `json:"compliance"`
	Reason     string  `json:"reason,omitempty"`
}

// Flag marks a contribution as suspect. Flags accumulate and never change
// the contribution's status.
type Flag struct {
	Reason    string    `json:"reason"`
	FlaggedBy string    `json:"flagged_by"`
	FlaggedAt time.Time `json:"flagged_at"`
}

type Contribution struct {
	ID                string             `json:"id"`
	AuthorID          string             `json:"author_id"`
	Repository        string             `json:"repository"`
	ExternalChangeRef string             `json:"external_change_ref"`
	Status            ContributionStatus `json:"status"`
	Description       string             `json:"description"`
	Feedback          *Feedback          `json:"feedback,omitempty"`
	Flags             []Flag             `json:"flags,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	ValidatedAt       *time.Time         `json:"validated_at,omitempty"`
}

func (c Contribution) IsTerminal() bool {
	return c.Status == ContributionApproved || c.Status == ContributionRejected
}
