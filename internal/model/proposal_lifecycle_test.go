package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus_Table(t *testing.T) {
	allowed := map[ProposalStatus]map[ProposalEvent]ProposalStatus{
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
	}

	for _, from := range ProposalStatuses {
		for _, event := range ProposalEvents {
			next, ok := NextStatus(from, event)
			want, legal := allowed[from][event]
			assert.Equal(t, legal, ok, "%s --%s-->", from, event)
			assert.Equal(t, want, next, "%s --%s-->", from, event)
		}
	}
}

func TestNextStatus_UnknownInputs(t *testing.T) {
	_, ok := NextStatus("ARCHIVED", EventSubmit)
	assert.False(t, ok)

	_, ok = NextStatus(ProposalStatusDraft, "REOPEN")
	assert.False(t, ok)
}

func TestTerminalStatesHaveNoDecisions(t *testing.T) {
	for _, s := range ProposalStatuses {
		_, canApprove := NextStatus(s, EventApprove)
		if s.IsTerminal() {
			assert.False(t, canApprove, "%s", s)
		}
	}
	assert.False(t, ProposalStatusDraft.IsTerminal())
	assert.False(t, ProposalStatusPendingApproval.IsTerminal())
	assert.True(t, ProposalStatusConverted.IsTerminal())
}
