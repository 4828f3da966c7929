package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_VendorNeedsEngagement(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	rfp := f.createRFP(t, models.PublicRFP)

	_, err := f.messages.SendMessage(ctx, f.vendor, rfp.ID, models.MessageRequest{Content: "Is the roof flat?"})
	requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError,
		"You need to submit a proposal before you can message the RFP creator")

	_, err = f.messages.GetThread(ctx, f.vendor, rfp.ID, "")
	requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "")
}

func TestMessageService_Conversation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	rfp := f.createRFP(t, models.PublicRFP)
	f.submitProposal(t, f.vendor, rfp.ID)
	f.submitProposal(t, f.otherVendor, rfp.ID)

	question, err := f.messages.SendMessage(ctx, f.vendor, rfp.ID, models.MessageRequest{Content: "Is the roof flat?"})
	require.NoError(t, err)
	assert.Equal(t, f.creator.UserID, question.RecipientID)
	assert.Equal(t, 1, f.notifier.eventsFor(f.creator.UserID, models.MessageEvent))

	_, err = f.messages.SendMessage(ctx, f.otherVendor, rfp.ID, models.MessageRequest{Content: "When can we visit?"})
	require.NoError(t, err)

	answer, err := f.messages.SendMessage(ctx, f.creator, rfp.ID, models.MessageRequest{
		RecipientID: f.vendor.UserID,
		Content:     "It is pitched.",
	})
	require.NoError(t, err)
	assert.Equal(t, f.vendor.UserID, answer.RecipientID)

	t.Run("creator thread is scoped to the pair", func(t *testing.T) {
		thread, err := f.messages.GetThread(ctx, f.creator, rfp.ID, f.vendor.UserID)
		require.NoError(t, err)
		assert.Equal(t, f.vendor.UserID, thread.CounterpartID)
		require.Len(t, thread.Messages, 2)
		assert.Equal(t, question.ID, thread.Messages[0].ID)
		assert.Equal(t, answer.ID, thread.Messages[1].ID)
	})

	t.Run("vendor thread resolves the creator", func(t *testing.T) {
		thread, err := f.messages.GetThread(ctx, f.vendor, rfp.ID, "")
		require.NoError(t, err)
		assert.Equal(t, f.creator.UserID, thread.CounterpartID)
		assert.Len(t, thread.Messages, 2)
	})

	t.Run("unread and mark as read", func(t *testing.T) {
		unread, err := f.messages.GetUnread(ctx, f.creator)
		require.NoError(t, err)
		assert.Equal(t, 2, unread.Count)
		assert.Len(t, unread.Threads, 2)

		marked, err := f.messages.MarkAsRead(ctx, f.creator, rfp.ID, f.vendor.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), marked)

		count, err := f.messages.GetUnreadCount(ctx, f.creator)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		marked, err = f.messages.MarkAsRead(ctx, f.creator, rfp.ID, f.vendor.UserID)
		require.NoError(t, err)
		assert.Zero(t, marked)
	})
}

func TestMessageService_CreatorRecipientRules(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	rfp := f.createRFP(t, models.PrivateRFP)

	t.Run("recipient is required", func(t *testing.T) {
		_, err := f.messages.SendMessage(ctx, f.creator, rfp.ID, models.MessageRequest{Content: "Hello"})
		requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "Recipient is required")
	})

	t.Run("vendor without engagement is not found", func(t *testing.T) {
		_, err := f.messages.SendMessage(ctx, f.creator, rfp.ID, models.MessageRequest{RecipientID: f.vendor.UserID, Content: "Hello"})
		requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Vendor not found for this RFP")
	})

	t.Run("unknown recipient is not found", func(t *testing.T) {
		_, err := f.messages.SendMessage(ctx, f.creator, rfp.ID, models.MessageRequest{RecipientID: uuid.New().String(), Content: "Hello"})
		requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Vendor not found for this RFP")
	})

	t.Run("pending request is not engagement", func(t *testing.T) {
		_, err := f.approvals.RequestToBid(ctx, f.vendor, rfp.ID)
		require.NoError(t, err)
		_, err = f.messages.SendMessage(ctx, f.vendor, rfp.ID, models.MessageRequest{Content: "Hello"})
		requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "")
	})

	t.Run("approved vendor may talk before proposing", func(t *testing.T) {
		f.approve(t, f.otherVendor, rfp.ID, models.ApproveVendor)
		_, err := f.messages.SendMessage(ctx, f.creator, rfp.ID, models.MessageRequest{RecipientID: f.otherVendor.UserID, Content: "Welcome aboard"})
		require.NoError(t, err)
		_, err = f.messages.SendMessage(ctx, f.otherVendor, rfp.ID, models.MessageRequest{Content: "Thanks"})
		require.NoError(t, err)
	})

	t.Run("other community member", func(t *testing.T) {
		_, err := f.messages.SendMessage(ctx, f.neighbor, rfp.ID, models.MessageRequest{RecipientID: f.otherVendor.UserID, Content: "Hi"})
		requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "You do not have permission to send messages for this RFP")
	})

	t.Run("blank content", func(t *testing.T) {
		_, err := f.messages.SendMessage(ctx, f.otherVendor, rfp.ID, models.MessageRequest{Content: "   "})
		errResp := requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "")
		require.Len(t, errResp.Issues, 1)
		assert.Equal(t, "content", errResp.Issues[0].Field)
	})

	t.Run("missing rfp", func(t *testing.T) {
		_, err := f.messages.SendMessage(ctx, f.otherVendor, uuid.New().String(), models.MessageRequest{Content: "Hi"})
		requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "RFP not found")
	})
}

func TestMessageService_UnreadCountIsCached(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	rfp := f.createRFP(t, models.PublicRFP)
	f.submitProposal(t, f.vendor, rfp.ID)

	_, err := f.messages.SendMessage(ctx, f.vendor, rfp.ID, models.MessageRequest{Content: "First"})
	require.NoError(t, err)

	count, err := f.messages.GetUnreadCount(ctx, f.creator)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, f.cache.hits)

	count, err = f.messages.GetUnreadCount(ctx, f.creator)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, f.cache.hits)

	_, err = f.messages.SendMessage(ctx, f.vendor, rfp.ID, models.MessageRequest{Content: "Second"})
	require.NoError(t, err)

	count, err = f.messages.GetUnreadCount(ctx, f.creator)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
