package application

import (
	"log/slog"
	"time"

	"github.com/bilalafzal6349/ssc-system/internal/ports"
)

type Config struct {
	ServiceName         string
	SubmissionThreshold float64
	InitialTrustBias    float64
	DefaultPageSize     int
}

// Actor is the authenticated caller, resolved from the identity token by
// the transport adapter before any operation runs.
type Actor struct {
	SubjectID string
	Role      string
	RequestID string
}

type SubmitContributionInput struct {
	RepositoryID string
	Code         string
	Description  string
}

type ValidateContributionInput struct {
	ContributionID string
	Status         string
	Quality        float64
	Compliance     float64
	Reason         string
}

type InitializeTrustInput struct {
	UserID          string
	PreTrust        float64
	LegalAgreements float64
	CommunityType   float64
	Capabilities    float64
}

type JoinCommunityResult struct {
	Joined        bool   `json:"joined"`
	Message       string `json:"message"`
	CommunityID   string `json:"community_id"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type TrustProfile struct {
	UserID     string                     `json:"user_id"`
	TrustScore float64                    `json:"trust_score"`
	History    []TrustHistoryEntryPayload `json:"history"`
}

type TrustHistoryEntryPayload struct {
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type ContributionListOutput struct {
	Items []ContributionItem
	Total int
}

// ContributionItem narrows domain.Contribution for listing responses.
type ContributionItem struct {
	ID                string     `json:"id"`
	Repository        string     `json:"repository"`
	ExternalChangeRef string     `json:"external_change_ref"`
	Status            string     `json:"status"`
	Description       string     `json:"description"`
	FlagCount         int        `json:"flag_count"`
	CreatedAt         time.Time  `json:"created_at"`
	ValidatedAt       *time.Time `json:"validated_at,omitempty"`
}

type Service struct {
	cfg           Config
	users         ports.UserRepository
	contributions ports.ContributionRepository
	communities   ports.CommunityRepository
	history       ports.TrustHistoryRepository

	ledger   ports.LedgerClient
	codeHost ports.CodeHost
	locks    ports.TrustLocker

	logger *slog.Logger
	nowFn  func() time.Time
}

type Dependencies struct {
	Config        Config
	Users         ports.UserRepository
	Contributions ports.ContributionRepository
	Communities   ports.CommunityRepository
	History       ports.TrustHistoryRepository
	Ledger        ports.LedgerClient
	CodeHost      ports.CodeHost
	Locks         ports.TrustLocker
	Logger        *slog.Logger
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "trust-engine"
	}
	if cfg.SubmissionThreshold <= 0 {
		cfg.SubmissionThreshold = 0.5
	}
	if cfg.InitialTrustBias == 0 {
		cfg.InitialTrustBias = 0.05
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:           cfg,
		users:         deps.Users,
		contributions: deps.Contributions,
		communities:   deps.Communities,
		history:       deps.History,
		ledger:        deps.Ledger,
		codeHost:      deps.CodeHost,
		locks:         deps.Locks,
		logger:        logger.With("service", cfg.ServiceName, "layer", "application"),
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}
