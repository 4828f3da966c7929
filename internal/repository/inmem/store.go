// Package inmem хранит данные сервиса в памяти процесса. Используется в тестах
// и при STORAGE_DRIVER=memory.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"
	"github.com/senyabanana/common-elements/internal/utils"

	"github.com/google/uuid"
)

// Store реализует все репозитории сервиса поверх map.
type Store struct {
	mutex sync.RWMutex
	seq   int

	users     map[string]*models.User
	community map[string]*models.CommunityProfile // по user_id
	vendors   map[string]*models.VendorProfile    // по user_id
	rfps      map[string]*models.RFP
	details   map[string]*models.RFPPrivateDetails // по rfp_id
	approvals map[string]*models.VendorApprovalRequest
	proposals map[string]*models.Proposal
	messages  []*models.Message
	order     map[string]int

	categories map[string]*models.ForumCategory
	posts      map[string]*models.ForumPost
	comments   map[string]*models.ForumComment
	votes      map[voteKey]int
}

var (
	_ repository.RFPRepository      = (*Store)(nil)
	_ repository.ProfileRepository  = (*Store)(nil)
	_ repository.ApprovalRepository = (*Store)(nil)
	_ repository.ProposalRepository = (*Store)(nil)
	_ repository.MessageRepository  = (*Store)(nil)
	_ repository.ForumRepository    = (*Store)(nil)
)

// New создает пустое хранилище.
func New() *Store {
	return &Store{
		users:     make(map[string]*models.User),
		community: make(map[string]*models.CommunityProfile),
		vendors:   make(map[string]*models.VendorProfile),
		rfps:      make(map[string]*models.RFP),
		details:   make(map[string]*models.RFPPrivateDetails),
		approvals: make(map[string]*models.VendorApprovalRequest),
		proposals: make(map[string]*models.Proposal),
		order:     make(map[string]int),

		categories: make(map[string]*models.ForumCategory),
		posts:      make(map[string]*models.ForumPost),
		comments:   make(map[string]*models.ForumComment),
		votes:      make(map[voteKey]int),
	}
}

func (s *Store) nextOrder(id string) {
	s.seq++
	s.order[id] = s.seq
}

// AddCommunityMember регистрирует участника сообщества и его профиль.
func (s *Store) AddCommunityMember(fullName string) (models.User, models.CommunityProfile) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user := models.User{ID: uuid.New().String(), FullName: fullName, AccountType: models.CommunityMember}
	profile := models.CommunityProfile{ID: uuid.New().String(), UserID: user.ID, Role: "board_member", PropertyName: fullName + " HOA"}
	s.users[user.ID] = &user
	s.community[user.ID] = &profile
	return user, profile
}

// AddVendor регистрирует подрядчика и его профиль.
func (s *Store) AddVendor(companyName string) (models.User, models.VendorProfile) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user := models.User{ID: uuid.New().String(), FullName: companyName + " Owner", AccountType: models.Vendor}
	profile := models.VendorProfile{ID: uuid.New().String(), UserID: user.ID, CompanyName: companyName}
	s.users[user.ID] = &user
	s.vendors[user.ID] = &profile
	return user, profile
}

// AddUser регистрирует пользователя без профиля.
func (s *Store) AddUser(user models.User) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.users[user.ID] = &user
}

func (s *Store) communityByProfileID(profileID string) *models.CommunityProfile {
	for _, p := range s.community {
		if p.ID == profileID {
			return p
		}
	}
	return nil
}

func (s *Store) vendorByProfileID(profileID string) *models.VendorProfile {
	for _, p := range s.vendors {
		if p.ID == profileID {
			return p
		}
	}
	return nil
}

// CreateRFP создает RFP вместе с закрытыми деталями.
func (s *Store) CreateRFP(_ context.Context, creatorID string, rfpReq models.RFPRequest) (*models.RFP, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	creator := s.communityByProfileID(creatorID)
	if creator == nil {
		return nil, repository.ErrNotFound
	}
	now := time.Now().UTC()
	rfp := models.RFP{
		ID:            uuid.New().String(),
		CreatorID:     creatorID,
		CreatorUserID: creator.UserID,
		Title:         rfpReq.Title,
		Category:      rfpReq.Category,
		Description:   rfpReq.Description,
		Visibility:    rfpReq.Visibility,
		Status:        models.OpenRFP,
		Deadline:      rfpReq.Deadline,
		BudgetMin:     rfpReq.BudgetMin,
		BudgetMax:     rfpReq.BudgetMax,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.rfps[rfp.ID] = &rfp
	s.details[rfp.ID] = &models.RFPPrivateDetails{
		ID:                  uuid.New().String(),
		RFPID:               rfp.ID,
		PropertyAddress:     rfpReq.PropertyAddress,
		ContactName:         rfpReq.ContactName,
		ContactEmail:        rfpReq.ContactEmail,
		ContactPhone:        rfpReq.ContactPhone,
		DetailedScope:       rfpReq.DetailedScope,
		SpecialRequirements: rfpReq.SpecialRequirements,
		Attachments:         []models.Attachment{},
	}
	s.nextOrder(rfp.ID)
	out := rfp
	return &out, nil
}

// GetRFPs возвращает страницу RFP по фильтру.
func (s *Store) GetRFPs(_ context.Context, filter models.RFPFilter) ([]models.RFP, int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matched := []models.RFP{}
	for _, rfp := range s.rfps {
		if filter.Status != "" && rfp.Status != filter.Status {
			continue
		}
		if filter.Visibility != "" && rfp.Visibility != filter.Visibility {
			continue
		}
		if filter.CreatorUserID != "" && rfp.CreatorUserID != filter.CreatorUserID {
			continue
		}
		if len(filter.Categories) > 0 && !utils.Contains(filter.Categories, rfp.Category) {
			continue
		}
		matched = append(matched, *rfp)
	}
	sort.Slice(matched, func(i, j int) bool { return s.order[matched[i].ID] > s.order[matched[j].ID] })

	total := len(matched)
	if filter.Offset >= total {
		return []models.RFP{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

// GetRFPById возвращает RFP по ID.
func (s *Store) GetRFPById(_ context.Context, rfpId string) (*models.RFP, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rfp, ok := s.rfps[rfpId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *rfp
	return &out, nil
}

// GetPrivateDetails возвращает закрытые детали RFP.
func (s *Store) GetPrivateDetails(_ context.Context, rfpId string) (*models.RFPPrivateDetails, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	details, ok := s.details[rfpId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *details
	return &out, nil
}

// UpdateRFPStatus меняет статус RFP.
func (s *Store) UpdateRFPStatus(_ context.Context, rfpId string, status models.RFPStatus) (*models.RFP, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rfp, ok := s.rfps[rfpId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rfp.Status = status
	rfp.UpdatedAt = time.Now().UTC()
	out := *rfp
	return &out, nil
}

// Ping всегда успешен.
func (s *Store) Ping(context.Context) error {
	return nil
}

// GetUserById возвращает пользователя по ID.
func (s *Store) GetUserById(_ context.Context, userId string) (*models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, ok := s.users[userId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

// GetCommunityProfileByUserId возвращает профиль участника сообщества.
func (s *Store) GetCommunityProfileByUserId(_ context.Context, userId string) (*models.CommunityProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	profile, ok := s.community[userId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *profile
	return &out, nil
}

// GetVendorProfileByUserId возвращает профиль подрядчика.
func (s *Store) GetVendorProfileByUserId(_ context.Context, userId string) (*models.VendorProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	profile, ok := s.vendors[userId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *profile
	return &out, nil
}

func (s *Store) hydrateApproval(approval *models.VendorApprovalRequest) models.VendorApprovalRequest {
	out := *approval
	if vendor := s.vendorByProfileID(approval.VendorID); vendor != nil {
		out.VendorUserID = vendor.UserID
		out.CompanyName = vendor.CompanyName
	}
	if rfp, ok := s.rfps[approval.RFPID]; ok {
		out.RFPCreatorUserID = rfp.CreatorUserID
		out.RFPTitle = rfp.Title
	}
	return out
}

// CreateApproval создает заявку подрядчика в статусе pending.
func (s *Store) CreateApproval(_ context.Context, rfpId, vendorId string) (*models.VendorApprovalRequest, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, approval := range s.approvals {
		if approval.RFPID == rfpId && approval.VendorID == vendorId {
			return nil, repository.ErrAlreadyExists
		}
	}
	approval := &models.VendorApprovalRequest{
		ID:          uuid.New().String(),
		RFPID:       rfpId,
		VendorID:    vendorId,
		Status:      models.ApprovalPending,
		RequestedAt: time.Now().UTC(),
	}
	s.approvals[approval.ID] = approval
	s.nextOrder(approval.ID)
	out := s.hydrateApproval(approval)
	return &out, nil
}

// GetApprovalById возвращает заявку по ID.
func (s *Store) GetApprovalById(_ context.Context, approvalId string) (*models.VendorApprovalRequest, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	approval, ok := s.approvals[approvalId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.hydrateApproval(approval)
	return &out, nil
}

// GetVendorApproval возвращает заявку подрядчика на RFP.
func (s *Store) GetVendorApproval(_ context.Context, rfpId, vendorId string) (*models.VendorApprovalRequest, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, approval := range s.approvals {
		if approval.RFPID == rfpId && approval.VendorID == vendorId {
			out := s.hydrateApproval(approval)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ResolveApproval фиксирует решение, только пока заявка в статусе pending.
func (s *Store) ResolveApproval(_ context.Context, approvalId string, status models.ApprovalStatus, approvedAt *time.Time) (*models.VendorApprovalRequest, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	approval, ok := s.approvals[approvalId]
	if !ok || approval.Status != models.ApprovalPending {
		return nil, repository.ErrConflict
	}
	approval.Status = status
	approval.ApprovedAt = approvedAt
	out := s.hydrateApproval(approval)
	return &out, nil
}

func (s *Store) sortedApprovals(keep func(models.VendorApprovalRequest) bool) []models.VendorApprovalRequest {
	approvals := []models.VendorApprovalRequest{}
	for _, approval := range s.approvals {
		hydrated := s.hydrateApproval(approval)
		if keep(hydrated) {
			approvals = append(approvals, hydrated)
		}
	}
	sort.Slice(approvals, func(i, j int) bool { return s.order[approvals[i].ID] > s.order[approvals[j].ID] })
	return approvals
}

// GetPendingApprovals возвращает ожидающие заявки по RFP пользователя.
func (s *Store) GetPendingApprovals(_ context.Context, creatorUserId string) ([]models.VendorApprovalRequest, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.sortedApprovals(func(a models.VendorApprovalRequest) bool {
		return a.Status == models.ApprovalPending && a.RFPCreatorUserID == creatorUserId
	}), nil
}

// GetRFPApprovals возвращает все заявки по RFP.
func (s *Store) GetRFPApprovals(_ context.Context, rfpId string) ([]models.VendorApprovalRequest, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.sortedApprovals(func(a models.VendorApprovalRequest) bool {
		return a.RFPID == rfpId
	}), nil
}

func (s *Store) hydrateProposal(proposal *models.Proposal) models.Proposal {
	out := *proposal
	if vendor := s.vendorByProfileID(proposal.VendorID); vendor != nil {
		out.VendorUserID = vendor.UserID
	}
	return out
}

// CreateProposal создает предложение и увеличивает счетчик предложений RFP.
func (s *Store) CreateProposal(_ context.Context, vendorId string, proposalReq models.ProposalRequest) (*models.Proposal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rfp, ok := s.rfps[proposalReq.RFPID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, proposal := range s.proposals {
		if proposal.RFPID == proposalReq.RFPID && proposal.VendorID == vendorId {
			return nil, repository.ErrAlreadyExists
		}
	}
	now := time.Now().UTC()
	proposal := &models.Proposal{
		ID:           uuid.New().String(),
		RFPID:        proposalReq.RFPID,
		VendorID:     vendorId,
		CoverLetter:  proposalReq.CoverLetter,
		Timeline:     proposalReq.Timeline,
		Cost:         proposalReq.Cost,
		PaymentTerms: proposalReq.PaymentTerms,
		Attachments:  []models.Attachment{},
		Status:       models.SubmittedProposal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.proposals[proposal.ID] = proposal
	s.nextOrder(proposal.ID)
	rfp.ProposalCount++
	out := s.hydrateProposal(proposal)
	return &out, nil
}

// GetProposalById возвращает предложение по ID.
func (s *Store) GetProposalById(_ context.Context, proposalId string) (*models.Proposal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	proposal, ok := s.proposals[proposalId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.hydrateProposal(proposal)
	return &out, nil
}

// GetVendorProposal возвращает предложение подрядчика по RFP.
func (s *Store) GetVendorProposal(_ context.Context, rfpId, vendorId string) (*models.Proposal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, proposal := range s.proposals {
		if proposal.RFPID == rfpId && proposal.VendorID == vendorId {
			out := s.hydrateProposal(proposal)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetRFPProposals возвращает предложения по RFP, новые первыми.
func (s *Store) GetRFPProposals(_ context.Context, rfpId string) ([]models.Proposal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	proposals := []models.Proposal{}
	for _, proposal := range s.proposals {
		if proposal.RFPID == rfpId {
			proposals = append(proposals, s.hydrateProposal(proposal))
		}
	}
	sort.Slice(proposals, func(i, j int) bool { return s.order[proposals[i].ID] > s.order[proposals[j].ID] })
	return proposals, nil
}

// EditProposal меняет поля предложения, пока оно в статусе submitted.
func (s *Store) EditProposal(_ context.Context, proposalId string, update models.ProposalUpdate) (*models.Proposal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	proposal, ok := s.proposals[proposalId]
	if !ok || proposal.Status != models.SubmittedProposal {
		return nil, repository.ErrConflict
	}
	if update.CoverLetter != nil {
		proposal.CoverLetter = *update.CoverLetter
	}
	if update.Timeline != nil {
		proposal.Timeline = *update.Timeline
	}
	if update.Cost != nil {
		proposal.Cost = *update.Cost
	}
	if update.PaymentTerms != nil {
		proposal.PaymentTerms = *update.PaymentTerms
	}
	proposal.UpdatedAt = time.Now().UTC()
	out := s.hydrateProposal(proposal)
	return &out, nil
}

// UpdateProposalStatus меняет статус предложения, если текущий статус равен from.
func (s *Store) UpdateProposalStatus(_ context.Context, proposalId string, from, to models.ProposalStatus) (*models.Proposal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	proposal, ok := s.proposals[proposalId]
	if !ok || proposal.Status != from {
		return nil, repository.ErrConflict
	}
	proposal.Status = to
	proposal.UpdatedAt = time.Now().UTC()
	out := s.hydrateProposal(proposal)
	return &out, nil
}

// AcceptProposal принимает предложение и переводит RFP в awarded. Обе записи
// меняются под одной блокировкой либо не меняются вовсе.
func (s *Store) AcceptProposal(_ context.Context, proposalId string, from models.ProposalStatus) (*models.Proposal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	proposal, ok := s.proposals[proposalId]
	if !ok || proposal.Status != from {
		return nil, repository.ErrConflict
	}
	rfp, ok := s.rfps[proposal.RFPID]
	if !ok || !rfp.IsReviewable() {
		return nil, repository.ErrConflict
	}
	for _, other := range s.proposals {
		if other.RFPID == proposal.RFPID && other.Status == models.AcceptedProposal {
			return nil, repository.ErrConflict
		}
	}

	now := time.Now().UTC()
	proposal.Status = models.AcceptedProposal
	proposal.UpdatedAt = now
	rfp.Status = models.AwardedRFP
	rfp.UpdatedAt = now
	out := s.hydrateProposal(proposal)
	return &out, nil
}

// CreateMessage сохраняет сообщение.
func (s *Store) CreateMessage(_ context.Context, msg models.Message) (*models.Message, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()
	stored := msg
	s.messages = append(s.messages, &stored)
	return &msg, nil
}

// GetThreadMessages возвращает переписку двух пользователей по RFP.
func (s *Store) GetThreadMessages(_ context.Context, rfpId, userId, counterpartId string) ([]models.Message, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	messages := []models.Message{}
	for _, msg := range s.messages {
		if msg.RFPID != rfpId {
			continue
		}
		if (msg.SenderID == userId && msg.RecipientID == counterpartId) ||
			(msg.SenderID == counterpartId && msg.RecipientID == userId) {
			messages = append(messages, *msg)
		}
	}
	return messages, nil
}

// MarkAsRead отмечает прочитанными сообщения отправителя получателю по RFP.
func (s *Store) MarkAsRead(_ context.Context, rfpId, senderId, recipientId string, readAt time.Time) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var marked int64
	for _, msg := range s.messages {
		if msg.RFPID == rfpId && msg.SenderID == senderId && msg.RecipientID == recipientId && msg.ReadAt == nil {
			at := readAt
			msg.ReadAt = &at
			marked++
		}
	}
	return marked, nil
}

// CountUnread возвращает количество непрочитанных сообщений пользователя.
func (s *Store) CountUnread(_ context.Context, recipientId string) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	for _, msg := range s.messages {
		if msg.RecipientID == recipientId && msg.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

// GetUnreadByRFP группирует непрочитанные сообщения по RFP и отправителю.
func (s *Store) GetUnreadByRFP(_ context.Context, recipientId string) ([]models.UnreadSummary, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summaries := []models.UnreadSummary{}
	index := make(map[string]int)
	for i := len(s.messages) - 1; i >= 0; i-- {
		msg := s.messages[i]
		if msg.RecipientID != recipientId || msg.ReadAt != nil {
			continue
		}
		key := msg.RFPID + "/" + msg.SenderID
		pos, ok := index[key]
		if !ok {
			summary := models.UnreadSummary{RFPID: msg.RFPID, SenderID: msg.SenderID}
			if rfp, found := s.rfps[msg.RFPID]; found {
				summary.RFPTitle = rfp.Title
			}
			if sender, found := s.users[msg.SenderID]; found {
				summary.SenderName = sender.FullName
			}
			summaries = append(summaries, summary)
			pos = len(summaries) - 1
			index[key] = pos
		}
		summaries[pos].Count++
	}
	return summaries, nil
}
