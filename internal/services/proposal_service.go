package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"
	"github.com/senyabanana/common-elements/internal/utils"
)

const notEditableMessage = `You can only edit proposals with "submitted" status`

// ProposalService пропускает предложения подрядчиков только по открытым и доступным RFP.
type ProposalService struct {
	Repo         repository.ProposalRepository
	RFPRepo      repository.RFPRepository
	ProfileRepo  repository.ProfileRepository
	ApprovalRepo repository.ApprovalRepository
	Notifier     Notifier
}

// NewProposalService создаёт новый экземпляр ProposalService.
func NewProposalService(repo repository.ProposalRepository, rfpRepo repository.RFPRepository, profileRepo repository.ProfileRepository,
	approvalRepo repository.ApprovalRepository, notifier Notifier) *ProposalService {
	return &ProposalService{
		Repo:         repo,
		RFPRepo:      rfpRepo,
		ProfileRepo:  profileRepo,
		ApprovalRepo: approvalRepo,
		Notifier:     notifierOrNoop(notifier),
	}
}

// CreateProposal создает предложение подрядчика по RFP.
func (s *ProposalService) CreateProposal(ctx context.Context, actor models.Actor, proposalReq models.ProposalRequest) (*models.Proposal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsVendor() {
		return nil, models.NewAuthorizationError("Only vendors can submit proposals")
	}
	if err := checkStruct(proposalReq); err != nil {
		return nil, err
	}

	vendor, err := loadVendorProfile(ctx, s.ProfileRepo, actor.UserID)
	if err != nil {
		return nil, err
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, proposalReq.RFPID)
	if err != nil {
		return nil, err
	}
	if !rfp.IsOpen() {
		return nil, models.NewValidationError("This RFP is no longer accepting proposals")
	}

	if rfp.IsPrivate() {
		approval, err := findApproval(ctx, s.ApprovalRepo, rfp.ID, vendor.ID)
		if err != nil {
			return nil, models.NewDatabaseError("Failed to submit proposal. Please try again.", err)
		}
		if approval == nil || approval.Status != models.ApprovalApproved {
			return nil, models.NewAuthorizationError("You do not have access to submit a proposal for this RFP")
		}
	}

	existing, err := findProposal(ctx, s.Repo, rfp.ID, vendor.ID)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to submit proposal. Please try again.", err)
	}
	if existing != nil {
		return nil, models.NewConflictError("You have already submitted a proposal for this RFP")
	}

	proposal, err := s.Repo.CreateProposal(ctx, vendor.ID, proposalReq)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, models.NewConflictError("You have already submitted a proposal for this RFP")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to submit proposal. Please try again.", err)
	}

	s.Notifier.Notify(rfp.CreatorUserID, models.Event{Type: models.ProposalEvent, RFPID: rfp.ID, Data: proposal})
	return proposal, nil
}

// UpdateProposal меняет предложение, пока оно в статусе submitted.
func (s *ProposalService) UpdateProposal(ctx context.Context, actor models.Actor, proposalId string, update models.ProposalUpdate) (*models.Proposal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsVendor() {
		return nil, models.NewAuthorizationError("Only vendors can update proposals")
	}
	if update.IsEmpty() {
		return nil, models.NewValidationError("No changes to update")
	}
	if err := checkStruct(update); err != nil {
		return nil, err
	}

	vendor, err := loadVendorProfile(ctx, s.ProfileRepo, actor.UserID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.Repo.GetProposalById(ctx, proposalId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Proposal not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update proposal. Please try again.", err)
	}
	if proposal.VendorID != vendor.ID {
		return nil, models.NewAuthorizationError("You can only edit your own proposals")
	}
	if !proposal.IsEditable() {
		return nil, models.NewValidationError(notEditableMessage)
	}

	updated, err := s.Repo.EditProposal(ctx, proposal.ID, update)
	if errors.Is(err, repository.ErrConflict) {
		// Статус сменился между чтением и записью.
		return nil, models.NewValidationError(notEditableMessage)
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update proposal. Please try again.", err)
	}
	return updated, nil
}

// GetProposal возвращает предложение автору RFP или подрядчику-владельцу.
func (s *ProposalService) GetProposal(ctx context.Context, actor models.Actor, proposalId string) (*models.Proposal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	proposal, err := s.Repo.GetProposalById(ctx, proposalId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Proposal not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load proposal. Please try again.", err)
	}
	if proposal.VendorUserID == actor.UserID {
		return proposal, nil
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, proposal.RFPID)
	if err != nil {
		return nil, err
	}
	if rfp.CreatorUserID != actor.UserID {
		return nil, models.NewAuthorizationError("You do not have access to this proposal")
	}
	return proposal, nil
}

// GetRFPProposals возвращает все предложения автору RFP и только собственное - подрядчику.
func (s *ProposalService) GetRFPProposals(ctx context.Context, actor models.Actor, rfpId string) ([]models.Proposal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, rfpId)
	if err != nil {
		return nil, err
	}

	if rfp.CreatorUserID == actor.UserID {
		proposals, err := s.Repo.GetRFPProposals(ctx, rfp.ID)
		if err != nil {
			return nil, models.NewDatabaseError("Failed to load proposals. Please try again.", err)
		}
		return proposals, nil
	}
	if !actor.IsVendor() {
		return nil, models.NewAuthorizationError("You can only view proposals for your own RFPs")
	}

	vendor, err := loadVendorProfile(ctx, s.ProfileRepo, actor.UserID)
	if err != nil {
		return nil, err
	}
	own, err := findProposal(ctx, s.Repo, rfp.ID, vendor.ID)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load proposals. Please try again.", err)
	}
	if own == nil {
		return []models.Proposal{}, nil
	}
	return []models.Proposal{*own}, nil
}

// UpdateProposalStatus меняет статус предложения. Принятие предложения переводит RFP в awarded.
func (s *ProposalService) UpdateProposalStatus(ctx context.Context, actor models.Actor, proposalId string, newStatus models.ProposalStatus) (*models.Proposal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsCommunityMember() {
		return nil, models.NewAuthorizationError("Only community members can review proposals")
	}
	if _, ok := models.ProposalStatusTransitions[newStatus]; !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported status: %s", newStatus))
	}

	proposal, err := s.Repo.GetProposalById(ctx, proposalId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Proposal not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update proposal. Please try again.", err)
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, proposal.RFPID)
	if err != nil {
		return nil, err
	}
	if rfp.CreatorUserID != actor.UserID {
		return nil, models.NewAuthorizationError("You can only review proposals for your own RFPs")
	}
	if !rfp.IsReviewable() {
		return nil, models.NewConflictError(fmt.Sprintf("cannot review proposals for a %s RFP", rfp.Status))
	}
	if !utils.Contains(models.ProposalStatusTransitions[proposal.Status], newStatus) {
		return nil, models.NewConflictError(fmt.Sprintf("cannot change proposal status from %s to %s", proposal.Status, newStatus))
	}

	var updated *models.Proposal
	if newStatus == models.AcceptedProposal {
		// Принятие и перевод RFP в awarded выполняются одной транзакцией.
		updated, err = s.Repo.AcceptProposal(ctx, proposal.ID, proposal.Status)
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewConflictError("This proposal can no longer be accepted")
		}
	} else {
		updated, err = s.Repo.UpdateProposalStatus(ctx, proposal.ID, proposal.Status, newStatus)
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewConflictError("This proposal has already been updated")
		}
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update proposal. Please try again.", err)
	}

	s.Notifier.Notify(updated.VendorUserID, models.Event{Type: models.ProposalEvent, RFPID: rfp.ID, Data: updated})
	return updated, nil
}
