package contracts

// LedgerAction is the trust-affecting record submitted to the external
// ledger. Fields are populated per action; omitted ones stay off the wire.
type LedgerAction struct {
	Action         string           `json:"action"`
	UserID         string           `json:"user_id,omitempty"`
	ContributionID string           `json:"contribution_id,omitempty"`
	RepositoryID   string           `json:"repository_id,omitempty"`
	CommunityID    string           `json:"community_id,omitempty"`
	Status         string           `json:"status,omitempty"`
	Feedback       *FeedbackPayload `json:"feedback,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	FlaggedBy      string           `json:"flagged_by,omitempty"`
	Vote           string           `json:"vote,omitempty"`
	Voter          string           `json:"voter,omitempty"`
	Penalty        *float64         `json:"penalty,omitempty"`
	TrustScore     *float64         `json:"trust_score,omitempty"`
}

type FeedbackPayload struct {
	Quality    float64 `json:"quality"`
	Compliance float64 `json:"compliance"`
	Reason     string  `json:"reason,omitempty"`
}

// TransactionEnvelope is the transport wrapper the ledger endpoint accepts.
// Payload is base64(JSON(LedgerAction)); Signature is an HMAC-SHA256 over
// the encoded payload keyed with the shared ledger signing key.
type TransactionEnvelope struct {
	Payload   string `json:"payload"`
	Family    string `json:"family"`
	Version   string `json:"version"`
	Signature string `json:"signature,omitempty"`
}

// LedgerReceipt is the ledger's acknowledgement. NewScore is present on
// update_trust receipts; the ledger, not this service, owns that math.
type LedgerReceipt struct {
	TransactionID string   `json:"transaction_id"`
	Status        string   `json:"status"`
	Action        string   `json:"action,omitempty"`
	NewScore      *float64 `json:"new_score,omitempty"`
	RecordedAt    string   `json:"recorded_at,omitempty"`
}

type LedgerLogResponse struct {
	Transactions []LedgerReceipt `json:"transactions"`
}
