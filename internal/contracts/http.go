package contracts

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type SubmitContributionRequest struct {
	RepositoryID string `json:"repository_id"`
	Code         string `json:"code"`
	Description  string `json:"description"`
}

type ValidateContributionRequest struct {
	Status   string          `json:"status"`
	Feedback FeedbackPayload `json:"feedback"`
}

type FlagContributionRequest struct {
	Reason string `json:"reason"`
}

type JoinCommunityRequest struct {
	Credentials *CredentialsPayload `json:"credentials,omitempty"`
}

type CredentialsPayload struct {
	PreTrust        float64 `json:"pre_trust"`
	LegalAgreements float64 `json:"legal_agreements"`
	CommunityType   float64 `json:"community_type"`
	Capabilities    float64 `json:"capabilities"`
}

type VoteRequest struct {
	Vote   string `json:"vote"`
	Reason string `json:"reason"`
}

type PenaltyRequest struct {
	Penalty float64 `json:"penalty"`
	Reason  string  `json:"reason"`
}

type InitializeTrustRequest struct {
	PreTrust        float64 `json:"pre_trust"`
	LegalAgreements float64 `json:"legal_agreements"`
	CommunityType   float64 `json:"community_type"`
	Capabilities    float64 `json:"capabilities"`
}
