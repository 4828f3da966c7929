package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"
)

var existingRequestMessages = map[models.ApprovalStatus]string{
	models.ApprovalPending:  "You have already requested to bid on this RFP",
	models.ApprovalApproved: "You are already approved to bid on this RFP",
	models.ApprovalRejected: "Your request to bid on this RFP was rejected",
}

// ApprovalService ведет заявки подрядчиков на участие в закрытых RFP.
type ApprovalService struct {
	Repo        repository.ApprovalRepository
	RFPRepo     repository.RFPRepository
	ProfileRepo repository.ProfileRepository
	Notifier    Notifier
}

// NewApprovalService создаёт новый экземпляр ApprovalService.
func NewApprovalService(repo repository.ApprovalRepository, rfpRepo repository.RFPRepository, profileRepo repository.ProfileRepository, notifier Notifier) *ApprovalService {
	return &ApprovalService{
		Repo:        repo,
		RFPRepo:     rfpRepo,
		ProfileRepo: profileRepo,
		Notifier:    notifierOrNoop(notifier),
	}
}

// RequestToBid создает заявку подрядчика в статусе pending.
func (s *ApprovalService) RequestToBid(ctx context.Context, actor models.Actor, rfpId string) (*models.VendorApprovalRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsVendor() {
		return nil, models.NewAuthorizationError("Only vendors can request to bid on RFPs")
	}

	vendor, err := loadVendorProfile(ctx, s.ProfileRepo, actor.UserID)
	if err != nil {
		return nil, err
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, rfpId)
	if err != nil {
		return nil, err
	}
	if !rfp.IsPrivate() {
		return nil, models.NewValidationError("This RFP is public and does not require approval")
	}
	if !rfp.IsOpen() {
		return nil, models.NewValidationError("This RFP is no longer accepting requests")
	}

	existing, err := findApproval(ctx, s.Repo, rfp.ID, vendor.ID)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to submit request. Please try again.", err)
	}
	if existing != nil {
		return nil, models.NewConflictError(existingRequestMessages[existing.Status])
	}

	approval, err := s.Repo.CreateApproval(ctx, rfp.ID, vendor.ID)
	if errors.Is(err, repository.ErrAlreadyExists) {
		// Параллельная заявка успела вставить строку раньше.
		return nil, models.NewConflictError(existingRequestMessages[models.ApprovalPending])
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to submit request. Please try again.", err)
	}

	s.Notifier.Notify(rfp.CreatorUserID, models.Event{Type: models.BidRequestEvent, RFPID: rfp.ID, Data: approval})
	return approval, nil
}

// ResolveApproval фиксирует решение автора RFP по заявке. Решение окончательное.
func (s *ApprovalService) ResolveApproval(ctx context.Context, actor models.Actor, approvalId string, decision models.ApprovalDecision) (*models.VendorApprovalRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsCommunityMember() {
		return nil, models.NewAuthorizationError("Only community members can approve vendors")
	}

	newStatus, ok := decision.Status()
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported decision: %s", decision))
	}

	approval, err := s.Repo.GetApprovalById(ctx, approvalId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Approval request not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update approval. Please try again.", err)
	}
	if approval.RFPCreatorUserID != actor.UserID {
		return nil, models.NewAuthorizationError("You can only approve vendors for your own RFPs")
	}
	if !approval.Status.CanTransitionTo(newStatus) {
		return nil, models.NewConflictError(fmt.Sprintf("This request has already been %s", approval.Status))
	}

	var approvedAt *time.Time
	if newStatus == models.ApprovalApproved {
		now := nowFunc().UTC()
		approvedAt = &now
	}

	resolved, err := s.Repo.ResolveApproval(ctx, approval.ID, newStatus, approvedAt)
	if errors.Is(err, repository.ErrConflict) {
		return nil, models.NewConflictError("This request has already been resolved")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update approval. Please try again.", err)
	}

	s.Notifier.Notify(resolved.VendorUserID, models.Event{Type: models.ApprovalResolvedEvent, RFPID: resolved.RFPID, Data: resolved})
	return resolved, nil
}

// GetPendingApprovals возвращает ожидающие заявки по всем RFP пользователя.
func (s *ApprovalService) GetPendingApprovals(ctx context.Context, actor models.Actor) ([]models.VendorApprovalRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsCommunityMember() {
		return nil, models.NewAuthorizationError("Only community members can approve vendors")
	}

	approvals, err := s.Repo.GetPendingApprovals(ctx, actor.UserID)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load approval requests. Please try again.", err)
	}
	return approvals, nil
}

// GetRFPApprovals возвращает все заявки по RFP. Доступно только автору.
func (s *ApprovalService) GetRFPApprovals(ctx context.Context, actor models.Actor, rfpId string) ([]models.VendorApprovalRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, rfpId)
	if err != nil {
		return nil, err
	}
	if rfp.CreatorUserID != actor.UserID {
		return nil, models.NewAuthorizationError("You can only approve vendors for your own RFPs")
	}

	approvals, err := s.Repo.GetRFPApprovals(ctx, rfp.ID)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load approval requests. Please try again.", err)
	}
	return approvals, nil
}
