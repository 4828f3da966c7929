package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository/inmem"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	userID string
	event  models.Event
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Notify(userID string, event models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{userID: userID, event: event})
}

func (n *recordingNotifier) eventsFor(userID, eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.userID == userID && e.event.Type == eventType {
			count++
		}
	}
	return count
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string]int
	hits   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]int)}
}

func (c *memoryCache) GetUnread(_ context.Context, userID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[userID]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *memoryCache) SetUnread(_ context.Context, userID string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[userID] = count
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.values, id)
	}
	return nil
}

type fixture struct {
	store     *inmem.Store
	notifier  *recordingNotifier
	cache     *memoryCache
	access    *AccessService
	rfps      *RFPService
	approvals *ApprovalService
	proposals *ProposalService
	messages  *MessageService
	forum     *ForumService

	creator     models.Actor
	neighbor    models.Actor
	vendor      models.Actor
	otherVendor models.Actor
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := inmem.New()
	notifier := &recordingNotifier{}
	unread := newMemoryCache()

	creator, _ := store.AddCommunityMember("Maple Court")
	neighbor, _ := store.AddCommunityMember("Oak Ridge")
	vendor, _ := store.AddVendor("Acme Roofing")
	otherVendor, _ := store.AddVendor("Bright Paint")

	return &fixture{
		store:       store,
		notifier:    notifier,
		cache:       unread,
		access:      NewAccessService(store, store, store),
		rfps:        NewRFPService(store, store),
		approvals:   NewApprovalService(store, store, store, notifier),
		proposals:   NewProposalService(store, store, store, store, notifier),
		messages:    NewMessageService(store, store, store, store, store, unread, notifier, zerolog.Nop()),
		forum:       NewForumService(store, notifier),
		creator:     creator.Actor(),
		neighbor:    neighbor.Actor(),
		vendor:      vendor.Actor(),
		otherVendor: otherVendor.Actor(),
	}
}

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = prev })
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func validRFPRequest(visibility models.RFPVisibility) models.RFPRequest {
	return models.RFPRequest{
		Title:           "Roof replacement for building A",
		Category:        "roofing",
		Description:     strings.Repeat("The roof of building A needs a full replacement. ", 2),
		Visibility:      visibility,
		BudgetMin:       floatPtr(10000),
		BudgetMax:       floatPtr(25000),
		PropertyAddress: "12 Maple Court, Springfield",
		ContactName:     "Jane Doe",
		ContactEmail:    "board@maplecourt.example",
		DetailedScope:   strings.Repeat("Tear off existing shingles and replace underlayment. ", 2),
	}
}

func validProposalRequest(rfpId string) models.ProposalRequest {
	return models.ProposalRequest{
		RFPID:        rfpId,
		CoverLetter:  strings.Repeat("We have replaced over two hundred roofs in the county. ", 3),
		Timeline:     "Three weeks from signing",
		Cost:         18500,
		PaymentTerms: "30% upfront, balance on completion",
	}
}

func (f *fixture) createRFP(t *testing.T, visibility models.RFPVisibility) *models.RFP {
	t.Helper()
	rfp, err := f.rfps.CreateRFP(context.Background(), f.creator, validRFPRequest(visibility))
	require.NoError(t, err)
	return rfp
}

func (f *fixture) setRFPStatus(t *testing.T, rfpId string, status models.RFPStatus) {
	t.Helper()
	_, err := f.store.UpdateRFPStatus(context.Background(), rfpId, status)
	require.NoError(t, err)
}

// approve проводит заявку подрядчика через request_to_bid и решение автора.
func (f *fixture) approve(t *testing.T, vendor models.Actor, rfpId string, decision models.ApprovalDecision) *models.VendorApprovalRequest {
	t.Helper()
	approval, err := f.approvals.RequestToBid(context.Background(), vendor, rfpId)
	require.NoError(t, err)
	resolved, err := f.approvals.ResolveApproval(context.Background(), f.creator, approval.ID, decision)
	require.NoError(t, err)
	return resolved
}

func (f *fixture) submitProposal(t *testing.T, vendor models.Actor, rfpId string) *models.Proposal {
	t.Helper()
	proposal, err := f.proposals.CreateProposal(context.Background(), vendor, validProposalRequest(rfpId))
	require.NoError(t, err)
	return proposal
}

// requireErrorResponse проверяет тип, код и сообщение типизированной ошибки.
func requireErrorResponse(t *testing.T, err error, statusCode int, errType models.ErrorType, message string) *models.ErrorResponse {
	t.Helper()
	require.Error(t, err)
	var errResp *models.ErrorResponse
	require.True(t, errors.As(err, &errResp), "expected *models.ErrorResponse, got %T: %v", err, err)
	require.Equal(t, statusCode, errResp.StatusCode)
	require.Equal(t, errType, errResp.Type)
	if message != "" {
		require.Equal(t, message, errResp.Message)
	}
	return errResp
}
