package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"

	"github.com/google/uuid"
)

type voteKey struct {
	userID      string
	votableType models.VotableType
	votableID   string
}

// AddForumCategory регистрирует раздел форума.
func (s *Store) AddForumCategory(name, slug string, sortOrder int) models.ForumCategory {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	category := models.ForumCategory{ID: uuid.New().String(), Name: name, Slug: slug, SortOrder: sortOrder}
	s.categories[category.ID] = &category
	return category
}

// SeedForumCategories создает разделы форума по умолчанию.
func (s *Store) SeedForumCategories() {
	s.AddForumCategory("General Discussion", "general", 1)
	s.AddForumCategory("Vendor Recommendations", "vendor-recommendations", 2)
	s.AddForumCategory("Maintenance & Repairs", "maintenance", 3)
	s.AddForumCategory("Governance & Budgets", "governance", 4)
}

func (s *Store) forumAuthor(userID string) models.ForumAuthor {
	author := models.ForumAuthor{ID: userID}
	if user, ok := s.users[userID]; ok {
		author.FullName = user.FullName
		author.AvatarURL = user.AvatarURL
		author.AccountType = user.AccountType
	}
	return author
}

func (s *Store) hydratePost(post *models.ForumPost) models.ForumPost {
	out := *post
	out.Author = s.forumAuthor(post.Author.ID)
	if category, ok := s.categories[post.Category.ID]; ok {
		out.Category = models.ForumCategoryRef{ID: category.ID, Name: category.Name, Slug: category.Slug, Icon: category.Icon}
	}
	return out
}

func (s *Store) hydrateComment(comment *models.ForumComment) models.ForumComment {
	out := *comment
	out.Author = s.forumAuthor(comment.Author.ID)
	return out
}

// GetCategories возвращает разделы форума в порядке sort_order.
func (s *Store) GetCategories(context.Context) ([]models.ForumCategory, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	categories := make([]models.ForumCategory, 0, len(s.categories))
	for _, category := range s.categories {
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// GetCategoryById возвращает раздел форума по ID.
func (s *Store) GetCategoryById(_ context.Context, categoryId string) (*models.ForumCategory, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	category, ok := s.categories[categoryId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *category
	return &out, nil
}

// GetPosts возвращает страницу постов и общее количество.
func (s *Store) GetPosts(_ context.Context, filter models.PostFilter) ([]models.ForumPost, int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matched := []models.ForumPost{}
	for _, post := range s.posts {
		if filter.CategoryID != "" && post.Category.ID != filter.CategoryID {
			continue
		}
		matched = append(matched, s.hydratePost(post))
	}

	key := func(post models.ForumPost) int {
		switch filter.OrderBy {
		case models.OrderByVoteCount:
			return post.VoteCount
		case models.OrderByCommentCount:
			return post.CommentCount
		}
		return s.order[post.ID]
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.Ascending {
			a, b = b, a
		}
		if key(a) != key(b) {
			return key(a) > key(b)
		}
		return s.order[a.ID] > s.order[b.ID]
	})

	total := len(matched)
	if filter.Offset >= total {
		return []models.ForumPost{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

// GetPostById возвращает пост с автором и разделом.
func (s *Store) GetPostById(_ context.Context, postId string) (*models.ForumPost, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	post, ok := s.posts[postId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.hydratePost(post)
	return &out, nil
}

// RecordPostView увеличивает счетчик просмотров поста.
func (s *Store) RecordPostView(_ context.Context, postId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, ok := s.posts[postId]
	if !ok {
		return repository.ErrNotFound
	}
	post.ViewCount++
	return nil
}

// CreatePost создает пост форума.
func (s *Store) CreatePost(_ context.Context, authorId string, postReq models.PostRequest) (*models.ForumPost, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.categories[postReq.CategoryID]; !ok {
		return nil, repository.ErrNotFound
	}
	now := time.Now().UTC()
	post := models.ForumPost{
		ID:        uuid.New().String(),
		Title:     postReq.Title,
		Content:   postReq.Content,
		CreatedAt: now,
		UpdatedAt: now,
		Author:    models.ForumAuthor{ID: authorId},
		Category:  models.ForumCategoryRef{ID: postReq.CategoryID},
	}
	s.posts[post.ID] = &post
	s.nextOrder(post.ID)
	out := s.hydratePost(&post)
	return &out, nil
}

// UpdatePost меняет переданные поля поста.
func (s *Store) UpdatePost(_ context.Context, postId string, update models.PostUpdate) (*models.ForumPost, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, ok := s.posts[postId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.CategoryID != nil {
		if _, ok := s.categories[*update.CategoryID]; !ok {
			return nil, repository.ErrNotFound
		}
		post.Category = models.ForumCategoryRef{ID: *update.CategoryID}
	}
	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Content != nil {
		post.Content = *update.Content
	}
	post.UpdatedAt = time.Now().UTC()
	out := s.hydratePost(post)
	return &out, nil
}

// GetComments возвращает комментарии поста от старых к новым без группировки.
func (s *Store) GetComments(_ context.Context, postId string) ([]models.ForumComment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	comments := []models.ForumComment{}
	for _, comment := range s.comments {
		if comment.PostID == postId {
			comments = append(comments, s.hydrateComment(comment))
		}
	}
	sort.Slice(comments, func(i, j int) bool { return s.order[comments[i].ID] < s.order[comments[j].ID] })
	return comments, nil
}

// GetCommentById возвращает комментарий по ID.
func (s *Store) GetCommentById(_ context.Context, commentId string) (*models.ForumComment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	comment, ok := s.comments[commentId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.hydrateComment(comment)
	return &out, nil
}

// CreateComment добавляет комментарий и увеличивает счетчик комментариев поста.
func (s *Store) CreateComment(_ context.Context, comment models.ForumComment) (*models.ForumComment, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := time.Now().UTC()
	created := models.ForumComment{
		ID:              uuid.New().String(),
		PostID:          comment.PostID,
		Content:         comment.Content,
		ParentCommentID: comment.ParentCommentID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Author:          models.ForumAuthor{ID: comment.Author.ID},
	}
	s.comments[created.ID] = &created
	s.nextOrder(created.ID)
	post.CommentCount++
	out := s.hydrateComment(&created)
	return &out, nil
}

// UpdateComment меняет текст комментария.
func (s *Store) UpdateComment(_ context.Context, commentId, content string) (*models.ForumComment, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	comment, ok := s.comments[commentId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	comment.Content = content
	comment.UpdatedAt = time.Now().UTC()
	out := s.hydrateComment(comment)
	return &out, nil
}

// CastVote переключает голос пользователя и пересчитывает счетчик голосов.
func (s *Store) CastVote(_ context.Context, userId string, votableType models.VotableType, votableId string, direction models.VoteDirection) (*models.VoteResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var count *int
	switch votableType {
	case models.PostVotable:
		if post, ok := s.posts[votableId]; ok {
			count = &post.VoteCount
		}
	case models.CommentVotable:
		if comment, ok := s.comments[votableId]; ok {
			count = &comment.VoteCount
		}
	}
	if count == nil {
		return nil, repository.ErrNotFound
	}

	result := &models.VoteResult{VotableType: votableType, VotableID: votableId}
	key := voteKey{userID: userId, votableType: votableType, votableID: votableId}
	value := direction.Value()
	existing, voted := s.votes[key]
	switch {
	case !voted:
		s.votes[key] = value
		*count += value
		result.Direction = &direction
	case existing == value:
		delete(s.votes, key)
		*count -= value
	default:
		s.votes[key] = value
		*count += value - existing
		result.Direction = &direction
	}
	result.VoteCount = *count
	return result, nil
}
