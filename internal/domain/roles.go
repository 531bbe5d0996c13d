package domain

// Capability names every governance decision a role may take. All role
// checks go through this table; call sites never re-derive an ordinal
// hierarchy.
type Capability string

const (
	CapSubmitContributions   Capability = "submit_contributions"
	CapValidateContributions Capability = "validate_contributions"
	CapFlagContributions     Capability = "flag_contributions"
	CapVoteOnAlerts          Capability = "vote_on_alerts"
	CapApplyPenalties        Capability = "apply_penalties"
	CapInitializeTrust       Capability = "initialize_trust"
	CapViewLedgerLog         Capability = "view_ledger_log"
	CapJoinCommunities       Capability = "join_communities"
	CapViewAllCommunities    Capability = "view_all_communities"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser: {
		CapSubmitContributions: true,
		CapJoinCommunities:     true,
	},
	RoleMaintainer: {
		CapSubmitContributions:   true,
		CapValidateContributions: true,
		CapFlagContributions:     true,
		CapVoteOnAlerts:          true,
		CapJoinCommunities:       true,
		CapViewAllCommunities:    true,
	},
	RoleAdmin: {
		CapSubmitContributions:   true,
		CapValidateContributions: true,
		CapFlagContributions:     true,
		CapVoteOnAlerts:          true,
		CapApplyPenalties:        true,
		CapInitializeTrust:       true,
		CapViewLedgerLog:         true,
		CapJoinCommunities:       true,
		CapViewAllCommunities:    true,
	},
}

func HasCapability(role Role, capability Capability) bool {
	return roleCapabilities[role][capability]
}
