package services

import (
	"context"
	"errors"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"
)

// AccessService решает, кто может видеть закрытую часть RFP.
type AccessService struct {
	RFPRepo      repository.RFPRepository
	ProfileRepo  repository.ProfileRepository
	ApprovalRepo repository.ApprovalRepository
}

// NewAccessService создаёт новый экземпляр AccessService.
func NewAccessService(rfpRepo repository.RFPRepository, profileRepo repository.ProfileRepository, approvalRepo repository.ApprovalRepository) *AccessService {
	return &AccessService{RFPRepo: rfpRepo, ProfileRepo: profileRepo, ApprovalRepo: approvalRepo}
}

// CanViewPrivateDetails возвращает решение о доступе к закрытой части RFP с причиной.
// Ошибки хранилища возвращаются как ошибки, а не как отказ.
func (s *AccessService) CanViewPrivateDetails(ctx context.Context, actor models.Actor, rfpId string) (models.AccessDecision, error) {
	if err := requireActor(actor); err != nil {
		return models.AccessDecision{}, err
	}

	rfp, err := s.RFPRepo.GetRFPById(ctx, rfpId)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Deny(models.DeniedRFPNotFound), nil
	}
	if err != nil {
		return models.AccessDecision{}, models.NewDatabaseError("Failed to load RFP. Please try again.", err)
	}
	return s.evaluate(ctx, actor, rfp)
}

func (s *AccessService) evaluate(ctx context.Context, actor models.Actor, rfp *models.RFP) (models.AccessDecision, error) {
	if !rfp.IsPrivate() {
		return models.Allow(models.AccessPublic), nil
	}
	if rfp.CreatorUserID == actor.UserID {
		return models.Allow(models.AccessCreator), nil
	}
	if !actor.IsVendor() {
		return models.Deny(models.DeniedNotCreator), nil
	}

	vendor, err := s.ProfileRepo.GetVendorProfileByUserId(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Deny(models.DeniedNoVendorProfile), nil
	}
	if err != nil {
		return models.AccessDecision{}, models.NewDatabaseError("Failed to load vendor profile. Please try again.", err)
	}

	approval, err := findApproval(ctx, s.ApprovalRepo, rfp.ID, vendor.ID)
	if err != nil {
		return models.AccessDecision{}, models.NewDatabaseError("Failed to load approval status. Please try again.", err)
	}
	if approval == nil {
		return models.Deny(models.DeniedNotRequested), nil
	}
	switch approval.Status {
	case models.ApprovalApproved:
		return models.Allow(models.AccessApprovedVendor), nil
	case models.ApprovalRejected:
		return models.Deny(models.DeniedApprovalRejected), nil
	default:
		return models.Deny(models.DeniedApprovalPending), nil
	}
}

// GetPrivateDetails возвращает закрытую часть RFP, если доступ разрешен.
func (s *AccessService) GetPrivateDetails(ctx context.Context, actor models.Actor, rfpId string) (*models.RFPPrivateDetails, error) {
	decision, err := s.CanViewPrivateDetails(ctx, actor, rfpId)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		if decision.Reason == models.DeniedRFPNotFound {
			return nil, models.NewNotFoundError(decision.Message())
		}
		return nil, models.NewAuthorizationError(decision.Message())
	}

	details, err := s.RFPRepo.GetPrivateDetails(ctx, rfpId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("RFP details not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load RFP details. Please try again.", err)
	}
	return details, nil
}
