package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"
	"github.com/senyabanana/common-elements/internal/utils"
)

// RFPService - сервис каталога RFP.
type RFPService struct {
	Repo        repository.RFPRepository
	ProfileRepo repository.ProfileRepository
}

// NewRFPService создаёт новый экземпляр RFPService.
func NewRFPService(repo repository.RFPRepository, profileRepo repository.ProfileRepository) *RFPService {
	return &RFPService{Repo: repo, ProfileRepo: profileRepo}
}

// CreateRFP создает новый RFP от имени участника сообщества.
func (s *RFPService) CreateRFP(ctx context.Context, actor models.Actor, rfpReq models.RFPRequest) (*models.RFP, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsCommunityMember() {
		return nil, models.NewAuthorizationError("Only community members can create RFPs")
	}

	profile, err := loadCommunityProfile(ctx, s.ProfileRepo, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := checkStruct(rfpReq); err != nil {
		return nil, err
	}

	rfp, err := s.Repo.CreateRFP(ctx, profile.ID, rfpReq)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to create RFP. Please try again.", err)
	}
	return rfp, nil
}

// GetRFPs получает список RFP по фильтру.
func (s *RFPService) GetRFPs(ctx context.Context, filter models.RFPFilter) (*models.RFPList, error) {
	if filter.Status != "" {
		if _, ok := models.RFPStatusTransitions[filter.Status]; !ok {
			return nil, models.NewValidationError(fmt.Sprintf("unsupported status: %s", filter.Status))
		}
	}
	if filter.Visibility != "" && filter.Visibility != models.PublicRFP && filter.Visibility != models.PrivateRFP {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported visibility: %s", filter.Visibility))
	}

	rfps, total, err := s.Repo.GetRFPs(ctx, filter)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load RFPs. Please try again.", err)
	}
	return &models.RFPList{RFPs: rfps, Total: total}, nil
}

// GetRFP получает RFP по ID.
func (s *RFPService) GetRFP(ctx context.Context, rfpId string) (*models.RFP, error) {
	return loadRFP(ctx, s.Repo, rfpId)
}

// GetUserRFPs получает RFP, созданные пользователем.
func (s *RFPService) GetUserRFPs(ctx context.Context, actor models.Actor, limit, offset int) (*models.RFPList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsCommunityMember() {
		return nil, models.NewAuthorizationError("Only community members can create RFPs")
	}
	return s.GetRFPs(ctx, models.RFPFilter{CreatorUserID: actor.UserID, Limit: limit, Offset: offset})
}

// UpdateRFPStatus меняет статус RFP. Доступно только автору.
func (s *RFPService) UpdateRFPStatus(ctx context.Context, actor models.Actor, rfpId string, newStatus models.RFPStatus) (*models.RFP, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, ok := models.RFPStatusTransitions[newStatus]; !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported status: %s", newStatus))
	}

	rfp, err := loadRFP(ctx, s.Repo, rfpId)
	if err != nil {
		return nil, err
	}
	if rfp.CreatorUserID != actor.UserID {
		return nil, models.NewAuthorizationError("You can only update your own RFPs")
	}

	if !utils.Contains(models.RFPStatusTransitions[rfp.Status], newStatus) {
		return nil, models.NewConflictError(fmt.Sprintf("cannot change RFP status from %s to %s", rfp.Status, newStatus))
	}

	updated, err := s.Repo.UpdateRFPStatus(ctx, rfpId, newStatus)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("RFP not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update RFP. Please try again.", err)
	}
	return updated, nil
}
