package model

// ProposalEvent triggers a lifecycle transition.
type ProposalEvent string

const (
	EventSubmit  ProposalEvent = "SUBMIT"
	EventApprove ProposalEvent = "APPROVE" // every required tier approved
	EventReject  ProposalEvent = "REJECT"
	EventCancel  ProposalEvent = "CANCEL"
	EventConvert ProposalEvent = "CONVERT"
)

// ProposalEvents lists every lifecycle event in declaration order.
var ProposalEvents = []ProposalEvent{
	EventSubmit,
	EventApprove,
	EventReject,
	EventCancel,
	EventConvert,
}

// InitialProposalStatus is the state every proposal is created in and the
// old status of the first history entry.
const InitialProposalStatus = ProposalStatusDraft

// proposalTransitions is the only source of legal lifecycle moves.
// Absent pairs are illegal.
var proposalTransitions = map[ProposalStatus]map[ProposalEvent]ProposalStatus{
	ProposalStatusDraft: {
		EventSubmit: ProposalStatusPendingApproval,
		EventCancel: ProposalStatusCancelled,
	},
	ProposalStatusPendingApproval: {
		EventApprove: ProposalStatusApproved,
		EventReject:  ProposalStatusRejected,
		EventCancel:  ProposalStatusCancelled,
	},
	ProposalStatusApproved: {
		EventConvert: ProposalStatusConverted,
	},
	ProposalStatusRejected:  {},
	ProposalStatusCancelled: {},
	ProposalStatusConverted: {},
}

// NextStatus returns the state reached by applying event to current.
// ok is false when the move is not allowed.
func NextStatus(current ProposalStatus, event ProposalEvent) (next ProposalStatus, ok bool) {
	next, ok = proposalTransitions[current][event]
	return next, ok
}
