package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalService_PrivateRFPWorkflow(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	approvedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	freezeTime(t, approvedAt)

	rfp := f.createRFP(t, models.PrivateRFP)

	approval, err := f.approvals.RequestToBid(ctx, f.vendor, rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, approval.Status)
	assert.Nil(t, approval.ApprovedAt)
	assert.Equal(t, 1, f.notifier.eventsFor(f.creator.UserID, models.BidRequestEvent))

	resolved, err := f.approvals.ResolveApproval(ctx, f.creator, approval.ID, models.ApproveVendor)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, resolved.Status)
	require.NotNil(t, resolved.ApprovedAt)
	assert.Equal(t, approvedAt, *resolved.ApprovedAt)
	assert.Equal(t, 1, f.notifier.eventsFor(f.vendor.UserID, models.ApprovalResolvedEvent))

	proposal, err := f.proposals.CreateProposal(ctx, f.vendor, validProposalRequest(rfp.ID))
	require.NoError(t, err)
	assert.Equal(t, models.SubmittedProposal, proposal.Status)

	_, err = f.proposals.CreateProposal(ctx, f.vendor, validProposalRequest(rfp.ID))
	requireErrorResponse(t, err, http.StatusConflict, models.ValidationError, "You have already submitted a proposal for this RFP")
}

func TestApprovalService_RequestToBid(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	publicRFP := f.createRFP(t, models.PublicRFP)
	closedRFP := f.createRFP(t, models.PrivateRFP)
	f.setRFPStatus(t, closedRFP.ID, models.ClosedRFP)
	privateRFP := f.createRFP(t, models.PrivateRFP)

	tests := []struct {
		name     string
		actor    models.Actor
		rfpId    string
		wantCode int
		wantType models.ErrorType
		wantMsg  string
	}{
		{name: "community member", actor: f.neighbor, rfpId: privateRFP.ID, wantCode: http.StatusForbidden,
			wantType: models.AuthorizationError, wantMsg: "Only vendors can request to bid on RFPs"},
		{name: "missing rfp", actor: f.vendor, rfpId: uuid.New().String(), wantCode: http.StatusNotFound,
			wantType: models.ValidationError, wantMsg: "RFP not found"},
		{name: "public rfp", actor: f.vendor, rfpId: publicRFP.ID, wantCode: http.StatusBadRequest,
			wantType: models.ValidationError, wantMsg: "This RFP is public and does not require approval"},
		{name: "closed rfp", actor: f.vendor, rfpId: closedRFP.ID, wantCode: http.StatusBadRequest,
			wantType: models.ValidationError, wantMsg: "This RFP is no longer accepting requests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.approvals.RequestToBid(ctx, tt.actor, tt.rfpId)
			requireErrorResponse(t, err, tt.wantCode, tt.wantType, tt.wantMsg)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.approvals.RequestToBid(ctx, models.Actor{}, privateRFP.ID)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestApprovalService_RequestToBidTwice(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		decision models.ApprovalDecision
		wantMsg  string
	}{
		{name: "pending", wantMsg: "You have already requested to bid on this RFP"},
		{name: "approved", decision: models.ApproveVendor, wantMsg: "You are already approved to bid on this RFP"},
		{name: "rejected", decision: models.RejectVendor, wantMsg: "Your request to bid on this RFP was rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			rfp := f.createRFP(t, models.PrivateRFP)

			approval, err := f.approvals.RequestToBid(ctx, f.vendor, rfp.ID)
			require.NoError(t, err)
			if tt.decision != "" {
				_, err = f.approvals.ResolveApproval(ctx, f.creator, approval.ID, tt.decision)
				require.NoError(t, err)
			}

			_, err = f.approvals.RequestToBid(ctx, f.vendor, rfp.ID)
			requireErrorResponse(t, err, http.StatusConflict, models.ValidationError, tt.wantMsg)

			approvals, err := f.store.GetRFPApprovals(ctx, rfp.ID)
			require.NoError(t, err)
			assert.Len(t, approvals, 1)
		})
	}
}

func TestApprovalService_ResolveApproval(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	rfp := f.createRFP(t, models.PrivateRFP)

	approval, err := f.approvals.RequestToBid(ctx, f.vendor, rfp.ID)
	require.NoError(t, err)

	t.Run("not the creator", func(t *testing.T) {
		_, err := f.approvals.ResolveApproval(ctx, f.neighbor, approval.ID, models.ApproveVendor)
		requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "You can only approve vendors for your own RFPs")

		stored, err := f.store.GetApprovalById(ctx, approval.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalPending, stored.Status)
	})

	t.Run("vendor cannot resolve", func(t *testing.T) {
		_, err := f.approvals.ResolveApproval(ctx, f.vendor, approval.ID, models.ApproveVendor)
		requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "Only community members can approve vendors")
	})

	t.Run("unknown decision", func(t *testing.T) {
		_, err := f.approvals.ResolveApproval(ctx, f.creator, approval.ID, "maybe")
		requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "")
	})

	t.Run("missing approval", func(t *testing.T) {
		_, err := f.approvals.ResolveApproval(ctx, f.creator, uuid.New().String(), models.ApproveVendor)
		requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Approval request not found")
	})

	t.Run("rejection has no timestamp", func(t *testing.T) {
		resolved, err := f.approvals.ResolveApproval(ctx, f.creator, approval.ID, models.RejectVendor)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalRejected, resolved.Status)
		assert.Nil(t, resolved.ApprovedAt)
	})

	t.Run("resolved request is terminal", func(t *testing.T) {
		_, err := f.approvals.ResolveApproval(ctx, f.creator, approval.ID, models.ApproveVendor)
		requireErrorResponse(t, err, http.StatusConflict, models.ValidationError, "This request has already been rejected")

		stored, err := f.store.GetApprovalById(ctx, approval.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalRejected, stored.Status)
	})
}

func TestApprovalService_Listings(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	first := f.createRFP(t, models.PrivateRFP)
	second := f.createRFP(t, models.PrivateRFP)

	_, err := f.approvals.RequestToBid(ctx, f.vendor, first.ID)
	require.NoError(t, err)
	f.approve(t, f.otherVendor, first.ID, models.ApproveVendor)
	_, err = f.approvals.RequestToBid(ctx, f.otherVendor, second.ID)
	require.NoError(t, err)

	pending, err := f.approvals.GetPendingApprovals(ctx, f.creator)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, approval := range pending {
		assert.Equal(t, models.ApprovalPending, approval.Status)
	}

	none, err := f.approvals.GetPendingApprovals(ctx, f.neighbor)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := f.approvals.GetRFPApprovals(ctx, f.creator, first.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.approvals.GetRFPApprovals(ctx, f.neighbor, first.ID)
	requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "")
}
