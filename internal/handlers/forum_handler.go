package handlers

import (
	"net/http"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/services"
	"github.com/senyabanana/common-elements/internal/utils"
)

// ForumHandler - структура для обработки HTTP-запросов к форуму.
type ForumHandler struct {
	Base
	Service *services.ForumService
}

// NewForumHandler создаёт новый экземпляр ForumHandler.
func NewForumHandler(service *services.ForumService, base Base) *ForumHandler {
	return &ForumHandler{Base: base, Service: service}
}

// GetCategories обрабатывает запросы для получения разделов форума.
func (h *ForumHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.withTimeout(r)
	defer cancel()

	categories, err := h.Service.GetCategories(ctx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, categories)
}

// GetPosts обрабатывает запросы для получения списка постов.
func (h *ForumHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.withTimeout(r)
	defer cancel()

	query := r.URL.Query()
	limit, offset, err := utils.ParseLimitOffset(query.Get("limit"), query.Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, models.NewValidationError(err.Error()))
		return
	}

	direction := query.Get("direction")
	if direction != "" && direction != "asc" && direction != "desc" {
		utils.SendErrorResponse(w, models.NewValidationError("direction must be asc or desc"))
		return
	}

	list, err := h.Service.GetPosts(ctx, models.PostFilter{
		CategoryID: query.Get("category"),
		OrderBy:    models.PostOrder(query.Get("orderBy")),
		Ascending:  direction == "asc",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, list)
}

// CreatePost обрабатывает запросы для создания поста.
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var postReq models.PostRequest
	if err := utils.DecodeJSON(r, &postReq); err != nil {
		h.handleError(w, r, err)
		return
	}

	post, err := h.Service.CreatePost(ctx, actor, postReq)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusCreated, post)
}

// GetPost обрабатывает запросы для получения поста.
func (h *ForumHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.withTimeout(r)
	defer cancel()

	post, err := h.Service.GetPost(ctx, r.PathValue("postId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, post)
}

// EditPost обрабатывает запросы для изменения поста.
func (h *ForumHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var update models.PostUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		h.handleError(w, r, err)
		return
	}

	post, err := h.Service.UpdatePost(ctx, actor, r.PathValue("postId"), update)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendMessage(w, http.StatusOK, "Post updated successfully", post)
}

// GetComments обрабатывает запросы для получения комментариев поста.
func (h *ForumHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.withTimeout(r)
	defer cancel()

	comments, err := h.Service.GetComments(ctx, r.PathValue("postId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, comments)
}

// CreateComment обрабатывает запросы для добавления комментария.
func (h *ForumHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var commentReq models.CommentRequest
	if err := utils.DecodeJSON(r, &commentReq); err != nil {
		h.handleError(w, r, err)
		return
	}

	comment, err := h.Service.CreateComment(ctx, actor, r.PathValue("postId"), commentReq)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusCreated, comment)
}

// EditComment обрабатывает запросы для изменения комментария.
func (h *ForumHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var update models.CommentUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		h.handleError(w, r, err)
		return
	}

	comment, err := h.Service.UpdateComment(ctx, actor, r.PathValue("commentId"), update)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendMessage(w, http.StatusOK, "Comment updated successfully", comment)
}

// VotePost обрабатывает запросы для голосования за пост.
func (h *ForumHandler) VotePost(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, models.PostVotable, r.PathValue("postId"))
}

// VoteComment обрабатывает запросы для голосования за комментарий.
func (h *ForumHandler) VoteComment(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, models.CommentVotable, r.PathValue("commentId"))
}

func (h *ForumHandler) vote(w http.ResponseWriter, r *http.Request, votableType models.VotableType, votableId string) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	direction := r.URL.Query().Get("direction")
	if direction == "" {
		utils.SendErrorResponse(w, models.NewValidationError("direction is required"))
		return
	}

	result, err := h.Service.Vote(ctx, actor, votableType, votableId, models.VoteDirection(direction))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, result)
}
