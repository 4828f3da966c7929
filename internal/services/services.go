package services

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"
)

var nowFunc = time.Now

// Notifier доставляет события пользователю в реальном времени.
type Notifier interface {
	Notify(userID string, event models.Event)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, models.Event) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func requireActor(actor models.Actor) error {
	if !actor.IsAuthenticated() {
		return models.ErrUnauthenticated
	}
	return nil
}

// loadRFP возвращает RFP или типизированную ошибку.
func loadRFP(ctx context.Context, repo repository.RFPRepository, rfpId string) (*models.RFP, error) {
	rfp, err := repo.GetRFPById(ctx, rfpId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("RFP not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load RFP. Please try again.", err)
	}
	return rfp, nil
}

// loadVendorProfile возвращает профиль подрядчика пользователя.
func loadVendorProfile(ctx context.Context, repo repository.ProfileRepository, userId string) (*models.VendorProfile, error) {
	profile, err := repo.GetVendorProfileByUserId(ctx, userId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewAuthorizationError("Vendor profile not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load vendor profile. Please try again.", err)
	}
	return profile, nil
}

// loadCommunityProfile возвращает профиль участника сообщества.
func loadCommunityProfile(ctx context.Context, repo repository.ProfileRepository, userId string) (*models.CommunityProfile, error) {
	profile, err := repo.GetCommunityProfileByUserId(ctx, userId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewAuthorizationError("Community profile not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load community profile. Please try again.", err)
	}
	return profile, nil
}

// findApproval возвращает заявку подрядчика или nil, если ее нет.
func findApproval(ctx context.Context, repo repository.ApprovalRepository, rfpId, vendorId string) (*models.VendorApprovalRequest, error) {
	approval, err := repo.GetVendorApproval(ctx, rfpId, vendorId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return approval, err
}

// findProposal возвращает предложение подрядчика или nil, если его нет.
func findProposal(ctx context.Context, repo repository.ProposalRepository, rfpId, vendorId string) (*models.Proposal, error) {
	proposal, err := repo.GetVendorProposal(ctx, rfpId, vendorId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return proposal, err
}
