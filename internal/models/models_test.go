package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprovalStatus_Transitions(t *testing.T) {
	assert.True(t, ApprovalPending.CanTransitionTo(ApprovalApproved))
	assert.True(t, ApprovalPending.CanTransitionTo(ApprovalRejected))
	assert.False(t, ApprovalApproved.CanTransitionTo(ApprovalRejected))
	assert.False(t, ApprovalRejected.CanTransitionTo(ApprovalApproved))
	assert.False(t, ApprovalPending.CanTransitionTo(ApprovalPending))

	assert.False(t, ApprovalPending.IsTerminal())
	assert.True(t, ApprovalApproved.IsTerminal())
	assert.True(t, ApprovalRejected.IsTerminal())
}

func TestApprovalDecision_Status(t *testing.T) {
	tests := []struct {
		decision ApprovalDecision
		want     ApprovalStatus
		ok       bool
	}{
		{ApproveVendor, ApprovalApproved, true},
		{RejectVendor, ApprovalRejected, true},
		{"pending", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			got, ok := tt.decision.Status()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessDecision_Message(t *testing.T) {
	assert.True(t, Allow(AccessPublic).Allowed)
	assert.Equal(t, "Your request to bid on this RFP is awaiting approval", Deny(DeniedApprovalPending).Message())
	assert.Equal(t, "Your request to bid on this RFP was rejected", Deny(DeniedApprovalRejected).Message())
	assert.Equal(t, "access denied", Deny("something_else").Message())
}

func TestProposal_IsEditable(t *testing.T) {
	assert.True(t, (&Proposal{Status: SubmittedProposal}).IsEditable())
	assert.False(t, (&Proposal{Status: UnderReviewProposal}).IsEditable())
	assert.True(t, ProposalUpdate{}.IsEmpty())
	cost := 10.0
	assert.False(t, ProposalUpdate{Cost: &cost}.IsEmpty())
}

func TestErrorResponse_Error(t *testing.T) {
	cause := errors.New("connection refused")
	errResp := NewDatabaseError("Failed to load RFP", cause)

	assert.Equal(t, http.StatusInternalServerError, errResp.StatusCode)
	assert.Equal(t, "Failed to load RFP: connection refused", errResp.Error())
	assert.ErrorIs(t, errResp, cause)

	assert.Equal(t, http.StatusNotFound, NewNotFoundError("RFP not found").StatusCode)
	assert.Equal(t, http.StatusConflict, NewConflictError("dup").StatusCode)
	assert.Equal(t, AuthorizationError, NewAuthorizationError("no").Type)
}

func TestActor(t *testing.T) {
	user := User{ID: "u1", AccountType: Vendor}
	actor := user.Actor()
	assert.True(t, actor.IsAuthenticated())
	assert.True(t, actor.IsVendor())
	assert.False(t, actor.IsCommunityMember())
	assert.False(t, Actor{}.IsAuthenticated())
}
