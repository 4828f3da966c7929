package models

import "time"

type VoteDirection string // Направление голоса

const (
	UpVote   VoteDirection = "up"   // Голос за
	DownVote VoteDirection = "down" // Голос против
)

// Value возвращает вес голоса: +1 или -1.
func (d VoteDirection) Value() int {
	if d == DownVote {
		return -1
	}
	return 1
}

// IsValid сообщает, что направление голоса поддерживается.
func (d VoteDirection) IsValid() bool {
	return d == UpVote || d == DownVote
}

// VoteDirectionFromValue переводит вес голоса обратно в направление.
func VoteDirectionFromValue(value int) VoteDirection {
	if value < 0 {
		return DownVote
	}
	return UpVote
}

type VotableType string // Тип объекта голосования

const (
	PostVotable    VotableType = "post"    // Пост форума
	CommentVotable VotableType = "comment" // Комментарий к посту
)

type PostOrder string // Поле сортировки постов

const (
	OrderByCreatedAt    PostOrder = "created_at"
	OrderByVoteCount    PostOrder = "vote_count"
	OrderByCommentCount PostOrder = "comment_count"
)

// PostOrders - поддерживаемые поля сортировки постов.
var PostOrders = []PostOrder{OrderByCreatedAt, OrderByVoteCount, OrderByCommentCount}

// ForumCategory представляет раздел форума.
type ForumCategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	SortOrder   int     `json:"sortOrder"`
}

// ForumAuthor - автор поста или комментария.
type ForumAuthor struct {
	ID          string      `json:"id"`
	FullName    string      `json:"fullName"`
	AvatarURL   *string     `json:"avatarUrl,omitempty"`
	AccountType AccountType `json:"accountType"`
}

// ForumCategoryRef - краткие сведения о разделе в посте.
type ForumCategoryRef struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	Icon *string `json:"icon,omitempty"`
}

// ForumPost представляет пост форума.
type ForumPost struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Content      string           `json:"content"`
	VoteCount    int              `json:"voteCount"`
	CommentCount int              `json:"commentCount"`
	ViewCount    int              `json:"viewCount"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Author       ForumAuthor      `json:"author"`
	Category     ForumCategoryRef `json:"category"`
}

// ForumComment представляет комментарий к посту. Ответы вложены на один уровень.
type ForumComment struct {
	ID              string         `json:"id"`
	PostID          string         `json:"postId"`
	Content         string         `json:"content"`
	VoteCount       int            `json:"voteCount"`
	ParentCommentID *string        `json:"parentCommentId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Author          ForumAuthor    `json:"author"`
	Replies         []ForumComment `json:"replies,omitempty"`
}

// PostRequest представляет структуру запроса для создания поста.
type PostRequest struct {
	Title      string `json:"title" validate:"required,min=10,max=200"`
	Content    string `json:"content" validate:"required,min=20,max=10000"`
	CategoryID string `json:"categoryId" validate:"required,uuid"`
}

// PostUpdate представляет частичное изменение поста.
type PostUpdate struct {
	Title      *string `json:"title,omitempty" validate:"omitnil,min=10,max=200"`
	Content    *string `json:"content,omitempty" validate:"omitnil,min=20,max=10000"`
	CategoryID *string `json:"categoryId,omitempty" validate:"omitnil,uuid"`
}

// IsEmpty сообщает, что в изменении нет ни одного поля.
func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.CategoryID == nil
}

// CommentRequest представляет структуру запроса для создания комментария.
type CommentRequest struct {
	Content         string  `json:"content" validate:"required,notblank,max=5000"`
	ParentCommentID *string `json:"parentCommentId,omitempty" validate:"omitnil,uuid"`
}

// CommentUpdate представляет изменение текста комментария.
type CommentUpdate struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

// PostFilter описывает параметры выборки списка постов.
type PostFilter struct {
	CategoryID string
	OrderBy    PostOrder
	Ascending  bool
	Limit      int
	Offset     int
}

// PostList - страница списка постов с общим количеством.
type PostList struct {
	Posts []ForumPost `json:"posts"`
	Total int         `json:"total"`
}

// VoteResult - состояние голоса пользователя после переключения.
type VoteResult struct {
	VotableType VotableType    `json:"votableType"`
	VotableID   string         `json:"votableId"`
	Direction   *VoteDirection `json:"direction"`
	VoteCount   int            `json:"voteCount"`
}
