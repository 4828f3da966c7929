package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/repository"
	"github.com/senyabanana/common-elements/internal/utils"
)

const emptyCommentMessage = "Comment content is required"

// ForumService - сервис форума сообщества: посты, комментарии и голоса.
type ForumService struct {
	Repo     repository.ForumRepository
	Notifier Notifier
}

// NewForumService создаёт новый экземпляр ForumService.
func NewForumService(repo repository.ForumRepository, notifier Notifier) *ForumService {
	return &ForumService{Repo: repo, Notifier: notifierOrNoop(notifier)}
}

// GetCategories возвращает разделы форума.
func (s *ForumService) GetCategories(ctx context.Context) ([]models.ForumCategory, error) {
	categories, err := s.Repo.GetCategories(ctx)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load forum categories. Please try again.", err)
	}
	return categories, nil
}

// GetPosts возвращает страницу постов.
func (s *ForumService) GetPosts(ctx context.Context, filter models.PostFilter) (*models.PostList, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = models.OrderByCreatedAt
	}
	if !utils.Contains(models.PostOrders, filter.OrderBy) {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported orderBy: %s", filter.OrderBy))
	}

	posts, total, err := s.Repo.GetPosts(ctx, filter)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load forum posts. Please try again.", err)
	}
	return &models.PostList{Posts: posts, Total: total}, nil
}

// GetPost возвращает пост и учитывает просмотр.
func (s *ForumService) GetPost(ctx context.Context, postId string) (*models.ForumPost, error) {
	err := s.Repo.RecordPostView(ctx, postId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load post. Please try again.", err)
	}
	return s.loadPost(ctx, postId)
}

// CreatePost создает пост от имени пользователя.
func (s *ForumService) CreatePost(ctx context.Context, actor models.Actor, postReq models.PostRequest) (*models.ForumPost, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := checkStruct(postReq); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, postReq.CategoryID); err != nil {
		return nil, err
	}

	post, err := s.Repo.CreatePost(ctx, actor.UserID, postReq)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to create post. Please try again.", err)
	}
	return post, nil
}

// UpdatePost меняет пост. Доступно только автору.
func (s *ForumService) UpdatePost(ctx context.Context, actor models.Actor, postId string, update models.PostUpdate) (*models.ForumPost, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, models.NewValidationError("No changes to update")
	}
	if err := checkStruct(update); err != nil {
		return nil, err
	}

	post, err := s.loadPost(ctx, postId)
	if err != nil {
		return nil, err
	}
	if post.Author.ID != actor.UserID {
		return nil, models.NewAuthorizationError("You can only edit your own posts")
	}
	if update.CategoryID != nil {
		if err := s.checkCategory(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
	}

	updated, err := s.Repo.UpdatePost(ctx, post.ID, update)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update post. Please try again.", err)
	}
	return updated, nil
}

// GetComments возвращает комментарии поста, сгруппированные по верхнему уровню.
func (s *ForumService) GetComments(ctx context.Context, postId string) ([]models.ForumComment, error) {
	if _, err := s.loadPost(ctx, postId); err != nil {
		return nil, err
	}
	comments, err := s.Repo.GetComments(ctx, postId)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load comments. Please try again.", err)
	}
	return threadComments(comments), nil
}

// CreateComment добавляет комментарий или ответ на комментарий.
func (s *ForumService) CreateComment(ctx context.Context, actor models.Actor, postId string, commentReq models.CommentRequest) (*models.ForumComment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	commentReq.Content = strings.TrimSpace(commentReq.Content)
	if commentReq.Content == "" {
		return nil, models.NewValidationError(emptyCommentMessage)
	}
	if err := checkStruct(commentReq); err != nil {
		return nil, err
	}

	post, err := s.loadPost(ctx, postId)
	if err != nil {
		return nil, err
	}

	var parent *models.ForumComment
	if commentReq.ParentCommentID != nil {
		parent, err = s.Repo.GetCommentById(ctx, *commentReq.ParentCommentID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && parent.PostID != post.ID) {
			return nil, models.NewValidationError("Invalid parent comment")
		}
		if err != nil {
			return nil, models.NewDatabaseError("Failed to create comment. Please try again.", err)
		}
		// Ответ на ответ прикрепляется к корневому комментарию.
		if parent.ParentCommentID != nil {
			commentReq.ParentCommentID = parent.ParentCommentID
		}
	}

	comment, err := s.Repo.CreateComment(ctx, models.ForumComment{
		PostID:          post.ID,
		Content:         commentReq.Content,
		ParentCommentID: commentReq.ParentCommentID,
		Author:          models.ForumAuthor{ID: actor.UserID},
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to create comment. Please try again.", err)
	}

	event := models.Event{Type: models.ForumCommentEvent, PostID: post.ID, Data: comment}
	if post.Author.ID != actor.UserID {
		s.Notifier.Notify(post.Author.ID, event)
	}
	if parent != nil && parent.Author.ID != actor.UserID && parent.Author.ID != post.Author.ID {
		s.Notifier.Notify(parent.Author.ID, event)
	}
	return comment, nil
}

// UpdateComment меняет текст комментария. Доступно только автору.
func (s *ForumService) UpdateComment(ctx context.Context, actor models.Actor, commentId string, update models.CommentUpdate) (*models.ForumComment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	comment, err := s.loadComment(ctx, commentId)
	if err != nil {
		return nil, err
	}
	if comment.Author.ID != actor.UserID {
		return nil, models.NewAuthorizationError("You can only edit your own comments")
	}

	update.Content = strings.TrimSpace(update.Content)
	if update.Content == "" {
		return nil, models.NewValidationError(emptyCommentMessage)
	}
	if err := checkStruct(update); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateComment(ctx, comment.ID, update.Content)
	if err != nil {
		return nil, models.NewDatabaseError("Failed to update comment. Please try again.", err)
	}
	return updated, nil
}

// Vote переключает голос пользователя за пост или комментарий.
func (s *ForumService) Vote(ctx context.Context, actor models.Actor, votableType models.VotableType, votableId string, direction models.VoteDirection) (*models.VoteResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !direction.IsValid() {
		return nil, models.NewValidationError("direction must be up or down")
	}

	notFound := "Post not found"
	switch votableType {
	case models.PostVotable:
		if _, err := s.loadPost(ctx, votableId); err != nil {
			return nil, err
		}
	case models.CommentVotable:
		notFound = "Comment not found"
		if _, err := s.loadComment(ctx, votableId); err != nil {
			return nil, err
		}
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unsupported votable type: %s", votableType))
	}

	result, err := s.Repo.CastVote(ctx, actor.UserID, votableType, votableId, direction)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, models.NewConflictError("Your vote is already being recorded")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to record vote. Please try again.", err)
	}
	return result, nil
}

func (s *ForumService) loadPost(ctx context.Context, postId string) (*models.ForumPost, error) {
	post, err := s.Repo.GetPostById(ctx, postId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load post. Please try again.", err)
	}
	return post, nil
}

func (s *ForumService) loadComment(ctx context.Context, commentId string) (*models.ForumComment, error) {
	comment, err := s.Repo.GetCommentById(ctx, commentId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if err != nil {
		return nil, models.NewDatabaseError("Failed to load comment. Please try again.", err)
	}
	return comment, nil
}

func (s *ForumService) checkCategory(ctx context.Context, categoryId string) error {
	_, err := s.Repo.GetCategoryById(ctx, categoryId)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewValidationError("Invalid category")
	}
	if err != nil {
		return models.NewDatabaseError("Failed to load forum category. Please try again.", err)
	}
	return nil
}

// threadComments группирует ответы под корневыми комментариями, сохраняя порядок.
func threadComments(comments []models.ForumComment) []models.ForumComment {
	index := make(map[string]int)
	threads := []models.ForumComment{}
	for _, comment := range comments {
		if comment.ParentCommentID == nil {
			index[comment.ID] = len(threads)
			comment.Replies = []models.ForumComment{}
			threads = append(threads, comment)
		}
	}
	for _, comment := range comments {
		if comment.ParentCommentID == nil {
			continue
		}
		if i, ok := index[*comment.ParentCommentID]; ok {
			threads[i].Replies = append(threads[i].Replies, comment)
		}
	}
	return threads
}
