package postgres

import "time"

type userModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	Role         string    `gorm:"column:role"`
	TrustScore   float64   `gorm:"column:trust_score"`
	TrustVersion int64     `gorm:"column:trust_version"`
	GithubHandle string    `gorm:"column:github_handle"`
	ContactInfo  string    `gorm:"column:contact_info"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string { return "users" }

type userVoteModel struct {
	ID      int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID  string    `gorm:"column:user_id"`
	Vote    string    `gorm:"column:vote"`
	Reason  string    `gorm:"column:reason"`
	VoterID string    `gorm:"column:voter_id"`
	CastAt  time.Time `gorm:"column:cast_at"`
}

func (userVoteModel) TableName() string { return "user_votes" }

type membershipModel struct {
	CommunityID string    `gorm:"column:community_id;primaryKey"`
	UserID      string    `gorm:"column:user_id;primaryKey"`
	GrantedAt   time.Time `gorm:"column:granted_at"`
}

func (membershipModel) TableName() string { return "community_members" }

type contributionModel struct {
	ContributionID    string         `gorm:"column:contribution_id;primaryKey"`
	AuthorID          string         `gorm:"column:author_id"`
	Repository        string         `gorm:"column:repository"`
	ExternalChangeRef string         `gorm:"column:external_change_ref"`
	Status            string         `gorm:"column:status"`
	Description       string         `gorm:"column:description"`
	Feedback          *string        `gorm:"column:feedback"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	ValidatedAt       *time.Time     `gorm:"column:validated_at"`
}

func (contributionModel) TableName() string { return "contributions" }

type contributionFlagModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ContributionID string    `gorm:"column:contribution_id"`
	Reason         string    `gorm:"column:reason"`
	FlaggedBy      string    `gorm:"column:flagged_by"`
	FlaggedAt      time.Time `gorm:"column:flagged_at"`
}

func (contributionFlagModel) TableName() string { return "contribution_flags" }

type communityModel struct {
	CommunityID string    `gorm:"column:community_id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Type        string    `gorm:"column:type"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (communityModel) TableName() string { return "communities" }

type joinRequestModel struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	CommunityID string         `gorm:"column:community_id"`
	UserID      string         `gorm:"column:user_id"`
	Credentials string         `gorm:"column:credentials"`
	RequestedAt time.Time      `gorm:"column:requested_at"`
}

func (joinRequestModel) TableName() string { return "community_join_requests" }

type trustHistoryModel struct {
	EntryID   string    `gorm:"column:entry_id;primaryKey"`
	UserID    string    `gorm:"column:user_id"`
	Score     float64   `gorm:"column:score"`
	Reason    string    `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (trustHistoryModel) TableName() string { return "trust_history" }
