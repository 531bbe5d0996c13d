package application_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bilalafzal6349/ssc-system/internal/adapters/memory"
	"github.com/bilalafzal6349/ssc-system/internal/application"
	"github.com/bilalafzal6349/ssc-system/internal/contracts"
	"github.com/bilalafzal6349/ssc-system/internal/domain"
	"github.com/bilalafzal6349/ssc-system/internal/ports"
)

type stubLedger struct {
	mu       sync.Mutex
	actions  []contracts.LedgerAction
	newScore *float64
	err      error
	log      []contracts.LedgerReceipt
}

func (l *stubLedger) Submit(_ context.Context, action contracts.LedgerAction) (contracts.LedgerReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return contracts.LedgerReceipt{}, l.err
	}
	l.actions = append(l.actions, action)
	receipt := contracts.LedgerReceipt{
		TransactionID: uuid.NewString(),
		Status:        "applied",
		Action:        action.Action,
	}
	if action.Action == domain.ActionUpdateTrust {
		receipt.NewScore = l.newScore
	}
	return receipt, nil
}

func (l *stubLedger) FetchLog(_ context.Context) ([]contracts.LedgerReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return append([]contracts.LedgerReceipt(nil), l.log...), nil
}

func (l *stubLedger) recorded() []contracts.LedgerAction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]contracts.LedgerAction(nil), l.actions...)
}

type stubCodeHost struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (h *stubCodeHost) CreateChange(_ context.Context, repositoryID, authorID, _, _ string) (ports.ChangeRef, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return ports.ChangeRef{}, h.err
	}
	h.calls++
	return ports.ChangeRef{
		ID:     repositoryID + "!1",
		Branch: "contribution/" + authorID,
		WebURL: "https://git.example.com/" + repositoryID + "/merge_requests/1",
	}, nil
}

type fixture struct {
	svc           *application.Service
	users         *memory.UserRepository
	contributions *memory.ContributionRepository
	communities   *memory.CommunityRepository
	history       *memory.TrustHistoryRepository
	ledger        *stubLedger
	codeHost      *stubCodeHost
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory.NewUserRepository()
	contributions := memory.NewContributionRepository()
	communities := memory.NewCommunityRepository(users)
	history := memory.NewTrustHistoryRepository()
	ledger := &stubLedger{}
	codeHost := &stubCodeHost{}

	svc := application.NewService(application.Dependencies{
		Users:         users,
		Contributions: contributions,
		Communities:   communities,
		History:       history,
		Ledger:        ledger,
		CodeHost:      codeHost,
		Locks:         memory.NewTrustLocker(),
	})
	return &fixture{
		svc:           svc,
		users:         users,
		contributions: contributions,
		communities:   communities,
		history:       history,
		ledger:        ledger,
		codeHost:      codeHost,
	}
}

func (f *fixture) seedUser(t *testing.T, id string, role domain.Role, score float64) {
	t.Helper()
	if err := f.users.Create(context.Background(), domain.User{
		ID:         id,
		Role:       role,
		TrustScore: score,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func (f *fixture) seedCommunity(t *testing.T, id string, kind domain.CommunityType) {
	t.Helper()
	if err := f.communities.Create(context.Background(), domain.Community{
		ID:        id,
		Name:      id,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed community %s: %v", id, err)
	}
}

func actorFor(id string, role domain.Role) application.Actor {
	return application.Actor{SubjectID: id, Role: string(role), RequestID: "req-" + id}
}

func TestSubmitContributionBelowThreshold(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.3)

	_, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo",
		Code:         "patch",
	})
	if !errors.Is(err, domain.ErrInsufficientTrust) {
		t.Fatalf("expected ErrInsufficientTrust, got %v", err)
	}
	if len(f.ledger.recorded()) != 0 {
		t.Fatalf("expected no ledger actions for a blocked submission")
	}
	if f.codeHost.calls != 0 {
		t.Fatalf("expected no code host calls for a blocked submission")
	}
}

func TestSubmitContributionCreatesPendingRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)

	contribution, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo",
		Code:         "patch body",
		Description:  "fix parser",
	})
	if err != nil {
		t.Fatalf("submit contribution: %v", err)
	}
	if contribution.Status != domain.ContributionPending {
		t.Fatalf("expected pending status, got %s", contribution.Status)
	}
	if contribution.ExternalChangeRef == "" {
		t.Fatalf("expected a code host change ref")
	}

	stored, err := f.contributions.GetByID(context.Background(), contribution.ID)
	if err != nil {
		t.Fatalf("load stored contribution: %v", err)
	}
	if stored.AuthorID != "alice" || stored.Repository != "org/repo" {
		t.Fatalf("unexpected stored contribution: %+v", stored)
	}

	actions := f.ledger.recorded()
	if len(actions) != 1 || actions[0].Action != domain.ActionSubmitContribution {
		t.Fatalf("expected one submit_contribution ledger action, got %+v", actions)
	}
	if actions[0].ContributionID != contribution.ID {
		t.Fatalf("expected ledger action to carry the contribution id")
	}
}

func TestSubmitContributionLedgerFailureLeavesNoRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.ledger.err = domain.ErrLedgerUnavailable

	_, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo",
		Code:         "patch",
	})
	if !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
	if _, total, _ := f.contributions.ListByAuthor(context.Background(), "alice", 10, 0); total != 0 {
		t.Fatalf("expected no stored contributions after ledger failure, got %d", total)
	}
}

func TestValidateContributionAppliesReceiptScore(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedUser(t, "meera", domain.RoleMaintainer, 0.9)
	newScore := 0.82
	f.ledger.newScore = &newScore

	contribution, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo",
		Code:         "patch",
	})
	if err != nil {
		t.Fatalf("submit contribution: %v", err)
	}

	validated, score, err := f.svc.ValidateContribution(context.Background(), actorFor("meera", domain.RoleMaintainer), application.ValidateContributionInput{
		ContributionID: contribution.ID,
		Status:         "approved",
		Quality:        0.9,
		Compliance:     1,
		Reason:         "clean change",
	})
	if err != nil {
		t.Fatalf("validate contribution: %v", err)
	}
	if validated.Status != domain.ContributionApproved {
		t.Fatalf("expected approved, got %s", validated.Status)
	}
	if score != newScore {
		t.Fatalf("expected score %v from receipt, got %v", newScore, score)
	}

	author, _ := f.users.GetByID(context.Background(), "alice")
	if author.TrustScore != newScore {
		t.Fatalf("expected author score %v, got %v", newScore, author.TrustScore)
	}

	entries, _ := f.history.ListByUser(context.Background(), "alice")
	if len(entries) == 0 {
		t.Fatalf("expected a trust history entry")
	}
	if entries[0].Score != newScore {
		t.Fatalf("expected newest history entry %v, got %v", newScore, entries[0].Score)
	}
	if !strings.Contains(entries[0].Reason, "approved") {
		t.Fatalf("expected history reason to mention the decision, got %q", entries[0].Reason)
	}

	stored, _ := f.contributions.GetByID(context.Background(), contribution.ID)
	if stored.Feedback == nil || stored.Feedback.Quality != 0.9 {
		t.Fatalf("expected stored feedback, got %+v", stored.Feedback)
	}
	if stored.ValidatedAt == nil {
		t.Fatalf("expected validated_at to be set")
	}
}

func TestValidateContributionMissingReceiptScore(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedUser(t, "meera", domain.RoleMaintainer, 0.9)

	contribution, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo",
		Code:         "patch",
	})
	if err != nil {
		t.Fatalf("submit contribution: %v", err)
	}

	_, _, err = f.svc.ValidateContribution(context.Background(), actorFor("meera", domain.RoleMaintainer), application.ValidateContributionInput{
		ContributionID: contribution.ID,
		Status:         "rejected",
		Quality:        0.2,
		Compliance:     0.4,
	})
	if !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable on receipt without new score, got %v", err)
	}

	author, _ := f.users.GetByID(context.Background(), "alice")
	if author.TrustScore != 0.7 {
		t.Fatalf("expected author score untouched, got %v", author.TrustScore)
	}
	stored, _ := f.contributions.GetByID(context.Background(), contribution.ID)
	if stored.Status != domain.ContributionPending {
		t.Fatalf("expected contribution to stay pending, got %s", stored.Status)
	}
}

func TestValidateContributionRejectsBadInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "meera", domain.RoleMaintainer, 0.9)

	if _, _, err := f.svc.ValidateContribution(context.Background(), actorFor("meera", domain.RoleMaintainer), application.ValidateContributionInput{
		ContributionID: "missing",
		Status:         "pending",
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for pending decision, got %v", err)
	}
	if _, _, err := f.svc.ValidateContribution(context.Background(), actorFor("meera", domain.RoleMaintainer), application.ValidateContributionInput{
		ContributionID: "missing",
		Status:         "approved",
		Quality:        1.5,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad feedback, got %v", err)
	}
	if _, _, err := f.svc.ValidateContribution(context.Background(), actorFor("alice", domain.RoleUser), application.ValidateContributionInput{
		ContributionID: "missing",
		Status:         "approved",
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain user, got %v", err)
	}
}

func TestFlagContributionKeepsStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedUser(t, "aditi", domain.RoleAdmin, 1)

	contribution, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo",
		Code:         "patch",
	})
	if err != nil {
		t.Fatalf("submit contribution: %v", err)
	}

	flagged, err := f.svc.FlagContribution(context.Background(), actorFor("aditi", domain.RoleAdmin), contribution.ID, "looks copied")
	if err != nil {
		t.Fatalf("flag contribution: %v", err)
	}
	if flagged.Status != domain.ContributionPending {
		t.Fatalf("expected status untouched by flag, got %s", flagged.Status)
	}
	if len(flagged.Flags) != 1 || flagged.Flags[0].FlaggedBy != "aditi" {
		t.Fatalf("expected one flag by aditi, got %+v", flagged.Flags)
	}

	actions := f.ledger.recorded()
	last := actions[len(actions)-1]
	if last.Action != domain.ActionFlagContribution || last.FlaggedBy != "aditi" {
		t.Fatalf("expected flag_contribution ledger action, got %+v", last)
	}

	if _, err := f.svc.FlagContribution(context.Background(), actorFor("alice", domain.RoleUser), contribution.ID, "self flag"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected plain user forbidden from flagging, got %v", err)
	}
}

func TestGetContributionAccess(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedUser(t, "bob", domain.RoleUser, 0.7)
	f.seedUser(t, "meera", domain.RoleMaintainer, 0.9)

	contribution, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo",
		Code:         "patch",
	})
	if err != nil {
		t.Fatalf("submit contribution: %v", err)
	}

	if _, err := f.svc.GetContribution(context.Background(), actorFor("alice", domain.RoleUser), contribution.ID); err != nil {
		t.Fatalf("author should read own contribution: %v", err)
	}
	if _, err := f.svc.GetContribution(context.Background(), actorFor("meera", domain.RoleMaintainer), contribution.ID); err != nil {
		t.Fatalf("maintainer should read any contribution: %v", err)
	}
	if _, err := f.svc.GetContribution(context.Background(), actorFor("bob", domain.RoleUser), contribution.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected other user forbidden, got %v", err)
	}
}

func TestListContributionsScopesToSelf(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedUser(t, "bob", domain.RoleUser, 0.7)

	if _, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo", Code: "patch",
	}); err != nil {
		t.Fatalf("submit contribution: %v", err)
	}

	// A plain user asking for another author's list still sees only their own.
	out, err := f.svc.ListContributions(context.Background(), actorFor("bob", domain.RoleUser), "alice", 10, 0)
	if err != nil {
		t.Fatalf("list contributions: %v", err)
	}
	if out.Total != 0 {
		t.Fatalf("expected bob to see no contributions, got %d", out.Total)
	}
}

func TestJoinPublicCommunity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedCommunity(t, "golang-core", domain.CommunityPublic)

	result, err := f.svc.JoinCommunity(context.Background(), actorFor("alice", domain.RoleUser), "golang-core", nil)
	if err != nil {
		t.Fatalf("join community: %v", err)
	}
	if !result.Joined || result.TransactionID == "" {
		t.Fatalf("expected immediate join with ledger receipt, got %+v", result)
	}

	community, _ := f.communities.GetByID(context.Background(), "golang-core")
	if !community.HasMember("alice") {
		t.Fatalf("expected alice in community members")
	}
	user, _ := f.users.GetByID(context.Background(), "alice")
	if len(user.Communities) != 1 || user.Communities[0] != "golang-core" {
		t.Fatalf("expected membership mirrored on user, got %v", user.Communities)
	}

	actions := f.ledger.recorded()
	if len(actions) != 1 || actions[0].Action != domain.ActionJoinCommunity {
		t.Fatalf("expected one join_community action, got %+v", actions)
	}

	// Re-joining is a no-op and does not hit the ledger again.
	again, err := f.svc.JoinCommunity(context.Background(), actorFor("alice", domain.RoleUser), "golang-core", nil)
	if err != nil {
		t.Fatalf("re-join community: %v", err)
	}
	if !again.Joined {
		t.Fatalf("expected already-member result, got %+v", again)
	}
	if len(f.ledger.recorded()) != 1 {
		t.Fatalf("expected no second ledger action on re-join")
	}
}

func TestJoinPublicCommunityLedgerFailureGrantsNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedCommunity(t, "golang-core", domain.CommunityPublic)
	f.ledger.err = domain.ErrLedgerUnavailable

	if _, err := f.svc.JoinCommunity(context.Background(), actorFor("alice", domain.RoleUser), "golang-core", nil); !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
	community, _ := f.communities.GetByID(context.Background(), "golang-core")
	if community.HasMember("alice") {
		t.Fatalf("membership must not be granted when the ledger write fails")
	}
	user, _ := f.users.GetByID(context.Background(), "alice")
	if len(user.Communities) != 0 {
		t.Fatalf("user-side membership must stay empty, got %v", user.Communities)
	}
}

func TestJoinPrivateCommunityQueuesRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedCommunity(t, "kernel-sec", domain.CommunityPrivate)

	if _, err := f.svc.JoinCommunity(context.Background(), actorFor("alice", domain.RoleUser), "kernel-sec", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected credentials required, got %v", err)
	}
	if _, err := f.svc.JoinCommunity(context.Background(), actorFor("alice", domain.RoleUser), "kernel-sec", &domain.Credentials{PreTrust: 1.5}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected out-of-range credentials rejected, got %v", err)
	}

	result, err := f.svc.JoinCommunity(context.Background(), actorFor("alice", domain.RoleUser), "kernel-sec", &domain.Credentials{
		PreTrust: 0.8, LegalAgreements: 1, CommunityType: 0.5, Capabilities: 0.6,
	})
	if err != nil {
		t.Fatalf("join private community: %v", err)
	}
	if result.Joined {
		t.Fatalf("expected queued request, not membership")
	}
	if len(f.ledger.recorded()) != 0 {
		t.Fatalf("a queued join request must not reach the ledger")
	}

	community, _ := f.communities.GetByID(context.Background(), "kernel-sec")
	if !community.HasPendingRequest("alice") {
		t.Fatalf("expected pending join request for alice")
	}

	// A second attempt while pending stays idempotent.
	again, err := f.svc.JoinCommunity(context.Background(), actorFor("alice", domain.RoleUser), "kernel-sec", &domain.Credentials{
		PreTrust: 0.8, LegalAgreements: 1, CommunityType: 0.5, Capabilities: 0.6,
	})
	if err != nil {
		t.Fatalf("repeat join request: %v", err)
	}
	if again.Joined {
		t.Fatalf("expected still pending, got %+v", again)
	}
	community, _ = f.communities.GetByID(context.Background(), "kernel-sec")
	if len(community.JoinRequests) != 1 {
		t.Fatalf("expected a single queued request, got %d", len(community.JoinRequests))
	}
}

func TestVoteOnUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "mallory", domain.RoleUser, 0.6)
	f.seedUser(t, "meera", domain.RoleMaintainer, 0.9)

	if _, err := f.svc.VoteOnUser(context.Background(), actorFor("meera", domain.RoleMaintainer), "mallory", "maybe", "weird commits"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid vote choice rejected, got %v", err)
	}
	if _, err := f.svc.VoteOnUser(context.Background(), actorFor("mallory", domain.RoleUser), "meera", "reject", "revenge"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected plain user forbidden from voting, got %v", err)
	}

	vote, err := f.svc.VoteOnUser(context.Background(), actorFor("meera", domain.RoleMaintainer), "mallory", "reject", "weird commits")
	if err != nil {
		t.Fatalf("vote on user: %v", err)
	}
	if vote.Vote != domain.VoteReject || vote.VoterID != "meera" {
		t.Fatalf("unexpected vote record: %+v", vote)
	}

	target, _ := f.users.GetByID(context.Background(), "mallory")
	if len(target.Votes) != 1 {
		t.Fatalf("expected one stored vote, got %d", len(target.Votes))
	}
	if target.TrustScore != 0.6 {
		t.Fatalf("a vote must not change the trust score, got %v", target.TrustScore)
	}

	actions := f.ledger.recorded()
	if len(actions) != 1 || actions[0].Action != domain.ActionVoteMalicious || actions[0].Voter != "meera" {
		t.Fatalf("expected vote_malicious ledger action, got %+v", actions)
	}
}

func TestApplyPenaltyFloorsAtZero(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "mallory", domain.RoleUser, 0.3)
	f.seedUser(t, "aditi", domain.RoleAdmin, 1)

	if _, err := f.svc.ApplyPenalty(context.Background(), actorFor("meera", domain.RoleMaintainer), "mallory", 0.1, "spam"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected maintainer forbidden from penalties, got %v", err)
	}

	score, err := f.svc.ApplyPenalty(context.Background(), actorFor("aditi", domain.RoleAdmin), "mallory", 0.5, "malicious merge request")
	if err != nil {
		t.Fatalf("apply penalty: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected score floored at 0, got %v", score)
	}

	entries, _ := f.history.ListByUser(context.Background(), "mallory")
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Reason, "Penalty: ") {
		t.Fatalf("expected penalty history entry, got %+v", entries)
	}

	actions := f.ledger.recorded()
	last := actions[len(actions)-1]
	if last.Action != domain.ActionApplyPenalty || last.Penalty == nil || *last.Penalty != 0.5 {
		t.Fatalf("expected apply_penalty ledger action with penalty, got %+v", last)
	}
	if last.TrustScore == nil || *last.TrustScore != 0 {
		t.Fatalf("expected ledger action to carry the new score, got %+v", last.TrustScore)
	}
}

func TestInitializeTrust(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0)
	f.seedUser(t, "aditi", domain.RoleAdmin, 1)

	if _, err := f.svc.InitializeTrust(context.Background(), actorFor("meera", domain.RoleMaintainer), application.InitializeTrustInput{UserID: "alice"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected maintainer forbidden from initializing trust, got %v", err)
	}

	score, err := f.svc.InitializeTrust(context.Background(), actorFor("aditi", domain.RoleAdmin), application.InitializeTrustInput{
		UserID:          "alice",
		PreTrust:        0.8,
		LegalAgreements: 1,
		CommunityType:   0.5,
		Capabilities:    0.6,
	})
	if err != nil {
		t.Fatalf("initialize trust: %v", err)
	}
	want := 0.30*0.8 + 0.20*1.0 + 0.20*0.5 + 0.30*0.6 + 0.05
	if math.Abs(score-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, score)
	}

	user, _ := f.users.GetByID(context.Background(), "alice")
	if math.Abs(user.TrustScore-want) > 1e-9 {
		t.Fatalf("expected persisted score %v, got %v", want, user.TrustScore)
	}

	entries, _ := f.history.ListByUser(context.Background(), "alice")
	if len(entries) != 1 || entries[0].Reason != "Initial trust score" {
		t.Fatalf("expected initial history entry, got %+v", entries)
	}

	actions := f.ledger.recorded()
	if len(actions) != 1 || actions[0].Action != domain.ActionInitializeTrust {
		t.Fatalf("expected initialize_trust ledger action, got %+v", actions)
	}
}

func TestGetTrustProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0)
	f.seedUser(t, "bob", domain.RoleUser, 0.5)
	f.seedUser(t, "aditi", domain.RoleAdmin, 1)

	for i, score := range []float64{0.2, 0.4, 0.6} {
		if _, err := f.svc.InitializeTrust(context.Background(), actorFor("aditi", domain.RoleAdmin), application.InitializeTrustInput{
			UserID:   "alice",
			PreTrust: score,
		}); err != nil {
			t.Fatalf("initialize trust %d: %v", i, err)
		}
	}

	profile, err := f.svc.GetTrustProfile(context.Background(), actorFor("alice", domain.RoleUser), "")
	if err != nil {
		t.Fatalf("get own trust profile: %v", err)
	}
	if len(profile.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(profile.History))
	}
	if profile.History[0].Score != profile.TrustScore {
		t.Fatalf("expected newest history entry to equal live score: %v vs %v", profile.History[0].Score, profile.TrustScore)
	}

	if _, err := f.svc.GetTrustProfile(context.Background(), actorFor("bob", domain.RoleUser), "alice"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected plain user forbidden from reading another profile, got %v", err)
	}
	if _, err := f.svc.GetTrustProfile(context.Background(), actorFor("aditi", domain.RoleAdmin), "alice"); err != nil {
		t.Fatalf("admin should read any profile: %v", err)
	}
}

func TestListCommunitiesVisibility(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.7)
	f.seedUser(t, "meera", domain.RoleMaintainer, 0.9)
	f.seedCommunity(t, "public-a", domain.CommunityPublic)
	f.seedCommunity(t, "private-b", domain.CommunityPrivate)

	mine, err := f.svc.ListCommunities(context.Background(), actorFor("alice", domain.RoleUser))
	if err != nil {
		t.Fatalf("list communities: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "public-a" {
		t.Fatalf("expected only the public community for a plain user, got %+v", mine)
	}

	all, err := f.svc.ListCommunities(context.Background(), actorFor("meera", domain.RoleMaintainer))
	if err != nil {
		t.Fatalf("list all communities: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected maintainer to see both communities, got %d", len(all))
	}
}

func TestFetchLedgerLogRequiresAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.ledger.log = []contracts.LedgerReceipt{{TransactionID: "tx-1", Status: "applied"}}

	if _, err := f.svc.FetchLedgerLog(context.Background(), actorFor("meera", domain.RoleMaintainer)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected maintainer forbidden from ledger log, got %v", err)
	}
	receipts, err := f.svc.FetchLedgerLog(context.Background(), actorFor("aditi", domain.RoleAdmin))
	if err != nil {
		t.Fatalf("fetch ledger log: %v", err)
	}
	if len(receipts) != 1 || receipts[0].TransactionID != "tx-1" {
		t.Fatalf("unexpected ledger log: %+v", receipts)
	}
}

func TestUnauthenticatedActorsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if _, err := f.svc.SubmitContribution(context.Background(), application.Actor{}, application.SubmitContributionInput{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.ListCommunities(context.Background(), application.Actor{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.GetTrustProfile(context.Background(), application.Actor{}, "alice"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestConcurrentPenaltiesKeepHistoryConsistent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "mallory", domain.RoleUser, 0.9)
	f.seedUser(t, "aditi", domain.RoleAdmin, 1)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := f.svc.ApplyPenalty(context.Background(), actorFor("aditi", domain.RoleAdmin), "mallory", 0.05, "repeated abuse"); err != nil {
				t.Errorf("apply penalty: %v", err)
			}
		}()
	}
	wg.Wait()

	user, _ := f.users.GetByID(context.Background(), "mallory")
	want := 0.9 - float64(workers)*0.05
	if math.Abs(user.TrustScore-want) > 1e-9 {
		t.Fatalf("expected score %v after serialized penalties, got %v", want, user.TrustScore)
	}

	entries, _ := f.history.ListByUser(context.Background(), "mallory")
	if len(entries) != workers {
		t.Fatalf("expected %d history entries, got %d", workers, len(entries))
	}
	if math.Abs(entries[0].Score-user.TrustScore) > 1e-9 {
		t.Fatalf("expected newest history entry to match live score: %v vs %v", entries[0].Score, user.TrustScore)
	}
}

func TestContributionLifecycleEndToEnd(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedUser(t, "alice", domain.RoleUser, 0.3)
	f.seedUser(t, "meera", domain.RoleMaintainer, 0.9)
	f.seedUser(t, "aditi", domain.RoleAdmin, 1)

	// Blocked below the submission threshold.
	if _, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo", Code: "patch",
	}); !errors.Is(err, domain.ErrInsufficientTrust) {
		t.Fatalf("expected blocked submission, got %v", err)
	}

	// Admin re-initializes trust above the threshold.
	if _, err := f.svc.InitializeTrust(context.Background(), actorFor("aditi", domain.RoleAdmin), application.InitializeTrustInput{
		UserID:          "alice",
		PreTrust:        0.7,
		LegalAgreements: 0.8,
		CommunityType:   0.5,
		Capabilities:    0.5,
	}); err != nil {
		t.Fatalf("initialize trust: %v", err)
	}

	contribution, err := f.svc.SubmitContribution(context.Background(), actorFor("alice", domain.RoleUser), application.SubmitContributionInput{
		RepositoryID: "org/repo", Code: "patch", Description: "add retries",
	})
	if err != nil {
		t.Fatalf("submit after init: %v", err)
	}

	approvedScore := 0.75
	f.ledger.newScore = &approvedScore
	if _, _, err := f.svc.ValidateContribution(context.Background(), actorFor("meera", domain.RoleMaintainer), application.ValidateContributionInput{
		ContributionID: contribution.ID,
		Status:         "approved",
		Quality:        0.9,
		Compliance:     1,
		Reason:         "solid work",
	}); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := f.svc.ApplyPenalty(context.Background(), actorFor("aditi", domain.RoleAdmin), "alice", 0.2, "late disclosure"); err != nil {
		t.Fatalf("apply penalty: %v", err)
	}

	user, _ := f.users.GetByID(context.Background(), "alice")
	if math.Abs(user.TrustScore-0.55) > 1e-9 {
		t.Fatalf("expected final score 0.55, got %v", user.TrustScore)
	}

	entries, _ := f.history.ListByUser(context.Background(), "alice")
	if len(entries) != 3 {
		t.Fatalf("expected init+approve+penalty history, got %d entries", len(entries))
	}
	if math.Abs(entries[0].Score-user.TrustScore) > 1e-9 {
		t.Fatalf("newest history entry must mirror live score")
	}

	var kinds []string
	for _, action := range f.ledger.recorded() {
		kinds = append(kinds, action.Action)
	}
	want := []string{domain.ActionInitializeTrust, domain.ActionSubmitContribution, domain.ActionUpdateTrust, domain.ActionApplyPenalty}
	if len(kinds) != len(want) {
		t.Fatalf("expected ledger actions %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected ledger actions %v, got %v", want, kinds)
		}
	}
}
