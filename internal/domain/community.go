package domain

import (
	"fmt"
	"strings"
	"time"
)

type CommunityType string

const (
	CommunityPublic  CommunityType = "public"
	CommunityPrivate CommunityType = "private"
)

func NormalizeCommunityType(raw string) (CommunityType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(CommunityPublic):
		return CommunityPublic, true
	case string(CommunityPrivate):
		return CommunityPrivate, true
	default:
		return "", false
	}
}

// Credentials mirrors the four-factor structure of the initial trust
// formula; private communities collect it with each join request.
type Credentials struct {
	PreTrust        float64 `json:"pre_trust"`
	LegalAgreements float64 `json:"legal_agreements"`
	CommunityType   float64 `json:"community_type"`
	Capabilities    float64 `json:"capabilities"`
}

func (c Credentials) Validate() error {
	for name, v := range map[string]float64{
		"pre_trust":        c.PreTrust,
		"legal_agreements": c.LegalAgreements,
		"community_type":   c.CommunityType,
		"capabilities":     c.Capabilities,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: credential %s must be within [0,1]", ErrInvalidInput, name)
		}
	}
	return nil
}

// JoinRequest sits in a private community's queue until a separately
// specified approval action consumes it. This engine only records it.
type JoinRequest struct {
	UserID      string      `json:"user_id"`
	Credentials Credentials `json:"credentials"`
	RequestedAt time.Time   `json:"requested_at"`
}

type Community struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         CommunityType `json:"type"`
	Members      []string      `json:"members"`
	JoinRequests []JoinRequest `json:"join_requests,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (c Community) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

func (c Community) HasPendingRequest(userID string) bool {
	for _, r := range c.JoinRequests {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
