package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("record not found")      // Запись не найдена
	ErrAlreadyExists = errors.New("record already exists") // Нарушено ограничение уникальности
	ErrConflict      = errors.New("record state changed")  // Условное обновление не затронуло строк
)

const uniqueViolation = "23505"

// RFPRepository - интерфейс для работы с RFP.
type RFPRepository interface {
	CreateRFP(ctx context.Context, creatorID string, rfpReq models.RFPRequest) (*models.RFP, error)
	GetRFPs(ctx context.Context, filter models.RFPFilter) ([]models.RFP, int, error)
	GetRFPById(ctx context.Context, rfpId string) (*models.RFP, error)
	GetPrivateDetails(ctx context.Context, rfpId string) (*models.RFPPrivateDetails, error)
	UpdateRFPStatus(ctx context.Context, rfpId string, status models.RFPStatus) (*models.RFP, error)
	Ping(ctx context.Context) error
}

// ProfileRepository - интерфейс для работы с пользователями и профилями.
type ProfileRepository interface {
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetCommunityProfileByUserId(ctx context.Context, userId string) (*models.CommunityProfile, error)
	GetVendorProfileByUserId(ctx context.Context, userId string) (*models.VendorProfile, error)
}

// ApprovalRepository - интерфейс для работы с заявками подрядчиков.
type ApprovalRepository interface {
	CreateApproval(ctx context.Context, rfpId, vendorId string) (*models.VendorApprovalRequest, error)
	GetApprovalById(ctx context.Context, approvalId string) (*models.VendorApprovalRequest, error)
	GetVendorApproval(ctx context.Context, rfpId, vendorId string) (*models.VendorApprovalRequest, error)
	ResolveApproval(ctx context.Context, approvalId string, status models.ApprovalStatus, approvedAt *time.Time) (*models.VendorApprovalRequest, error)
	GetPendingApprovals(ctx context.Context, creatorUserId string) ([]models.VendorApprovalRequest, error)
	GetRFPApprovals(ctx context.Context, rfpId string) ([]models.VendorApprovalRequest, error)
}

// ProposalRepository - интерфейс для работы с предложениями.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, vendorId string, proposalReq models.ProposalRequest) (*models.Proposal, error)
	GetProposalById(ctx context.Context, proposalId string) (*models.Proposal, error)
	GetVendorProposal(ctx context.Context, rfpId, vendorId string) (*models.Proposal, error)
	GetRFPProposals(ctx context.Context, rfpId string) ([]models.Proposal, error)
	EditProposal(ctx context.Context, proposalId string, update models.ProposalUpdate) (*models.Proposal, error)
	UpdateProposalStatus(ctx context.Context, proposalId string, from, to models.ProposalStatus) (*models.Proposal, error)
	AcceptProposal(ctx context.Context, proposalId string, from models.ProposalStatus) (*models.Proposal, error)
}

// MessageRepository - интерфейс для работы с сообщениями.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	GetThreadMessages(ctx context.Context, rfpId, userId, counterpartId string) ([]models.Message, error)
	MarkAsRead(ctx context.Context, rfpId, senderId, recipientId string, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, recipientId string) (int, error)
	GetUnreadByRFP(ctx context.Context, recipientId string) ([]models.UnreadSummary, error)
}

// ForumRepository - интерфейс для работы с форумом.
type ForumRepository interface {
	GetCategories(ctx context.Context) ([]models.ForumCategory, error)
	GetCategoryById(ctx context.Context, categoryId string) (*models.ForumCategory, error)
	GetPosts(ctx context.Context, filter models.PostFilter) ([]models.ForumPost, int, error)
	GetPostById(ctx context.Context, postId string) (*models.ForumPost, error)
	RecordPostView(ctx context.Context, postId string) error
	CreatePost(ctx context.Context, authorId string, postReq models.PostRequest) (*models.ForumPost, error)
	UpdatePost(ctx context.Context, postId string, update models.PostUpdate) (*models.ForumPost, error)
	GetComments(ctx context.Context, postId string) ([]models.ForumComment, error)
	GetCommentById(ctx context.Context, commentId string) (*models.ForumComment, error)
	CreateComment(ctx context.Context, comment models.ForumComment) (*models.ForumComment, error)
	UpdateComment(ctx context.Context, commentId, content string) (*models.ForumComment, error)
	// CastVote переключает голос пользователя: тот же голос снимается, противоположный заменяет прежний.
	CastVote(ctx context.Context, userId string, votableType models.VotableType, votableId string, direction models.VoteDirection) (*models.VoteResult, error)
}

// mapError переводит ошибки драйвера в ошибки репозитория.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyExists
	}
	return err
}
