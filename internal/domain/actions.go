package domain

// Action names recorded on the trust ledger. Every trust-affecting
// operation submits exactly one of these per request.
const (
	ActionSubmitContribution = "submit_contribution"
	ActionUpdateTrust        = "update_trust"
	ActionFlagContribution   = "flag_contribution"
	ActionJoinCommunity      = "join_community"
	ActionVoteMalicious      = "vote_malicious"
	ActionApplyPenalty       = "apply_penalty"
	ActionInitializeTrust    = "initialize_trust"
)

const (
	LedgerFamily  = "trust_chain"
	LedgerVersion = "1.0"
)
