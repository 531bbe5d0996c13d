package ports

import (
	"context"

	"github.com/bilalafzal6349/ssc-system/internal/contracts"
)

// ChangeRef identifies the branch/commit/merge-request materialized on the
// external code host for a submitted contribution.
type ChangeRef struct {
	ID     string
	Branch string
	WebURL string
}

type CodeHost interface {
	CreateChange(ctx context.Context, repositoryID, authorID, code, description string) (ChangeRef, error)
}

// LedgerClient is the boundary to the external trust ledger. Submit does
// not deduplicate; each governing operation submits exactly once per
// request and treats a failure as fatal to the whole operation.
type LedgerClient interface {
	Submit(ctx context.Context, action contracts.LedgerAction) (contracts.LedgerReceipt, error)
	FetchLog(ctx context.Context) ([]contracts.LedgerReceipt, error)
}

// Identity is the verified subject of a bearer credential.
type Identity struct {
	UserID string
	Role   string
}

type TokenVerifier interface {
	Verify(raw string) (Identity, error)
}
