package services

import (
	"context"
	"errors"

	"github.com/senyabanana/common-elements/internal/cache"
	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"

	"github.com/rs/zerolog"
)

// MessageService ограничивает переписку автором RFP и вовлеченными подрядчиками.
type MessageService struct {
	Repo         repository.MessageRepository
	RFPRepo      repository.RFPRepository
	ProfileRepo  repository.ProfileRepository
	ApprovalRepo repository.ApprovalRepository
	ProposalRepo repository.ProposalRepository
	Cache        cache.UnreadCache
	Notifier     Notifier
	Logger       zerolog.Logger
}

// NewMessageService создаёт новый экземпляр MessageService.
func NewMessageService(repo repository.MessageRepository, rfpRepo repository.RFPRepository, profileRepo repository.ProfileRepository,
	approvalRepo repository.ApprovalRepository, proposalRepo repository.ProposalRepository,
	unreadCache cache.UnreadCache, notifier Notifier, logger zerolog.Logger) *MessageService {
	if unreadCache == nil {
		unreadCache = cache.NoopUnreadCache{}
	}
	return &MessageService{
		Repo:         repo,
		RFPRepo:      rfpRepo,
		ProfileRepo:  profileRepo,
		ApprovalRepo: approvalRepo,
		ProposalRepo: proposalRepo,
		Cache:        unreadCache,
		Notifier:     notifierOrNoop(notifier),
		Logger:       logger,
	}
}

// engaged сообщает, есть ли у подрядчика предложение или одобренная заявка по RFP.
func (s *MessageService) engaged(ctx context.Context, rfpId, vendorId string) (bool, error) {
	proposal, err := findProposal(ctx, s.ProposalRepo, rfpId, vendorId)
	if err != nil {
		return false, err
	}
	if proposal != nil {
		return true, nil
	}
	approval, err := findApproval(ctx, s.ApprovalRepo, rfpId, vendorId)
	if err != nil {
		return false, err
	}
	return approval != nil && approval.Status == models.ApprovalApproved, nil
}

// resolveCounterpart определяет собеседника пользователя в переписке по RFP.
func (s *MessageService) resolveCounterpart(ctx context.Context, actor models.Actor, rfp *models.RFP, with string) (string, error) {
	switch {
	case actor.IsCommunityMember():
		if rfp.CreatorUserID != actor.UserID {
			return "", models.NewAuthorizationError("You do not have permission to send messages for this RFP")
		}
		if with == "" {
			return "", models.NewValidationError("Recipient is required")
		}
		vendor, err := s.ProfileRepo.GetVendorProfileByUserId(ctx, with)
		if errors.Is(err, repository.ErrNotFound) {
			return "", models.NewNotFoundError("Vendor not found for this RFP")
		}
		if err != nil {
			return "", models.NewDatabaseError("Failed to load vendor profile. Please try again.", err)
		}
		ok, err := s.engaged(ctx, rfp.ID, vendor.ID)
		if err != nil {
			return "", models.NewDatabaseError("Failed to load conversation. Please try again.", err)
		}
		if !ok {
			return "", models.NewNotFoundError("Vendor not found for this RFP")
		}
		return with, nil

	case actor.IsVendor():
		if with != "" && with != rfp.CreatorUserID {
			return "", models.NewAuthorizationError("You can only message the RFP creator")
		}
		vendor, err := loadVendorProfile(ctx, s.ProfileRepo, actor.UserID)
		if err != nil {
			return "", err
		}
		ok, err := s.engaged(ctx, rfp.ID, vendor.ID)
		if err != nil {
			return "", models.NewDatabaseError("Failed to load conversation. Please try again.", err)
		}
		if !ok {
			return "", models.NewAuthorizationError("You need to submit a proposal before you can message the RFP creator")
		}
		return rfp.CreatorUserID, nil
	}
	return "", models.NewAuthorizationError("You do not have permission to send messages for this RFP")
}

// SendMessage отправляет сообщение собеседнику по RFP.
func (s *MessageService) SendMessage(ctx context.Context, actor models.Actor, rfpId string, msgReq models.MessageRequest) (*models.Message, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := checkStruct(msgReq); err != nil {
		return nil, err
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, rfpId)
	if err != nil {
		return nil, err
	}
	recipientId, err := s.resolveCounterpart(ctx, actor, rfp, msgReq.RecipientID)
	if err != nil {
		return nil, err
	}

	msg, err := s.Repo.CreateMessage(ctx, models.Message{
		RFPID:       rfp.ID,
		SenderID:    actor.UserID,
		RecipientID: recipientId,
		Content:     msgReq.Content,
	})
	if err != nil {
		return nil, models.NewDatabaseError("Failed to send message", err)
	}

	s.invalidate(ctx, recipientId)
	s.Notifier.Notify(recipientId, models.Event{Type: models.MessageEvent, RFPID: rfp.ID, Data: msg})
	return msg, nil
}

// GetThread возвращает переписку пользователя с собеседником по RFP.
func (s *MessageService) GetThread(ctx context.Context, actor models.Actor, rfpId, with string) (*models.Thread, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, rfpId)
	if err != nil {
		return nil, err
	}
	counterpartId, err := s.resolveCounterpart(ctx, actor, rfp, with)
	if err != nil {
		return nil, err
	}

	messages, err := s.Repo.GetThreadMessages(ctx, rfp.ID, actor.UserID, counterpartId)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load messages", err)
	}
	return &models.Thread{RFPID: rfp.ID, CounterpartID: counterpartId, Messages: messages}, nil
}

// MarkAsRead отмечает прочитанными сообщения отправителя пользователю по RFP.
func (s *MessageService) MarkAsRead(ctx context.Context, actor models.Actor, rfpId, senderId string) (int64, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}

	rfp, err := loadRFP(ctx, s.RFPRepo, rfpId)
	if err != nil {
		return 0, err
	}
	counterpartId, err := s.resolveCounterpart(ctx, actor, rfp, senderId)
	if err != nil {
		return 0, err
	}

	marked, err := s.Repo.MarkAsRead(ctx, rfp.ID, counterpartId, actor.UserID, nowFunc().UTC())
	if err != nil {
		return 0, models.NewDatabaseError("Failed to mark messages as read", err)
	}
	if marked > 0 {
		s.invalidate(ctx, actor.UserID)
	}
	return marked, nil
}

// GetUnreadCount возвращает количество непрочитанных сообщений пользователя.
func (s *MessageService) GetUnreadCount(ctx context.Context, actor models.Actor) (int, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}

	count, ok, err := s.Cache.GetUnread(ctx, actor.UserID)
	if err != nil {
		s.Logger.Warn().Err(err).Str("userId", actor.UserID).Msg("unread cache read failed")
	}
	if ok {
		return count, nil
	}

	count, err = s.Repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, models.NewDatabaseError("Failed to load unread messages", err)
	}
	if err := s.Cache.SetUnread(ctx, actor.UserID, count); err != nil {
		s.Logger.Warn().Err(err).Str("userId", actor.UserID).Msg("unread cache write failed")
	}
	return count, nil
}

// GetUnread возвращает количество непрочитанных сообщений и их группировку по RFP.
func (s *MessageService) GetUnread(ctx context.Context, actor models.Actor) (*models.Unread, error) {
	count, err := s.GetUnreadCount(ctx, actor)
	if err != nil {
		return nil, err
	}
	threads, err := s.Repo.GetUnreadByRFP(ctx, actor.UserID)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load unread messages", err)
	}
	return &models.Unread{Count: count, Threads: threads}, nil
}

func (s *MessageService) invalidate(ctx context.Context, userId string) {
	if err := s.Cache.Invalidate(ctx, userId); err != nil {
		s.Logger.Warn().Err(err).Str("userId", userId).Msg("unread cache invalidation failed")
	}
}
