package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postSelect = `SELECT p.id, p.title, p.content, p.vote_count, p.comment_count, p.view_count, p.created_at, p.updated_at,
	u.id, u.full_name, u.avatar_url, u.account_type, c.id, c.name, c.slug, c.icon`

const postFrom = `
		FROM forum_posts p
		JOIN users u ON u.id = p.author_id
		JOIN forum_categories c ON c.id = p.category_id`

const commentSelect = `SELECT fc.id, fc.post_id, fc.content, fc.vote_count, fc.parent_comment_id, fc.created_at, fc.updated_at,
	u.id, u.full_name, u.avatar_url, u.account_type
		FROM forum_comments fc
		JOIN users u ON u.id = fc.author_id`

// votableTables - таблицы, в которых хранится счетчик голосов.
var votableTables = map[models.VotableType]string{
	models.PostVotable:    "forum_posts",
	models.CommentVotable: "forum_comments",
}

// PostgresForumRepository - реализация ForumRepository для базы данных.
type PostgresForumRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresForumRepository создаёт новый экземпляр PostgresForumRepository.
func NewPostgresForumRepository(db *pgxpool.Pool) *PostgresForumRepository {
	return &PostgresForumRepository{DB: db}
}

func scanPost(row pgx.Row, post *models.ForumPost, extra ...any) error {
	dest := []any{
		&post.ID,
		&post.Title,
		&post.Content,
		&post.VoteCount,
		&post.CommentCount,
		&post.ViewCount,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Author.ID,
		&post.Author.FullName,
		&post.Author.AvatarURL,
		&post.Author.AccountType,
		&post.Category.ID,
		&post.Category.Name,
		&post.Category.Slug,
		&post.Category.Icon,
	}
	return row.Scan(append(dest, extra...)...)
}

func scanComment(row pgx.Row) (*models.ForumComment, error) {
	var comment models.ForumComment
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.Content,
		&comment.VoteCount,
		&comment.ParentCommentID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.Author.ID,
		&comment.Author.FullName,
		&comment.Author.AvatarURL,
		&comment.Author.AccountType,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &comment, nil
}

// GetCategories возвращает разделы форума в порядке sort_order.
func (r *PostgresForumRepository) GetCategories(ctx context.Context) ([]models.ForumCategory, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, slug, description, icon, sort_order FROM forum_categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.ForumCategory{}
	for rows.Next() {
		var category models.ForumCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.Icon, &category.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// GetCategoryById возвращает раздел форума по ID.
func (r *PostgresForumRepository) GetCategoryById(ctx context.Context, categoryId string) (*models.ForumCategory, error) {
	var category models.ForumCategory
	err := r.DB.QueryRow(ctx, `SELECT id, name, slug, description, icon, sort_order FROM forum_categories WHERE id = $1`, categoryId).
		Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.Icon, &category.SortOrder)
	if err != nil {
		return nil, mapError(err)
	}
	return &category, nil
}

// GetPosts возвращает страницу постов и общее количество.
func (r *PostgresForumRepository) GetPosts(ctx context.Context, filter models.PostFilter) ([]models.ForumPost, int, error) {
	var where string
	var args []interface{}
	if filter.CategoryID != "" {
		where = " WHERE p.category_id = $1"
		args = append(args, filter.CategoryID)
	}

	orderBy := models.OrderByCreatedAt
	for _, order := range models.PostOrders {
		if filter.OrderBy == order {
			orderBy = order
		}
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	query := postSelect + `, COUNT(*) OVER()` + postFrom + where +
		fmt.Sprintf(" ORDER BY p.%s %s, p.id LIMIT $%d OFFSET $%d", orderBy, direction, len(args)+1, len(args)+2)
	rows, err := r.DB.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := []models.ForumPost{}
	total := 0
	for rows.Next() {
		var post models.ForumPost
		if err := scanPost(rows, &post, &total); err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(posts) == 0 && filter.Offset > 0 {
		if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM forum_posts p`+where, args...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

// GetPostById возвращает пост с автором и разделом.
func (r *PostgresForumRepository) GetPostById(ctx context.Context, postId string) (*models.ForumPost, error) {
	var post models.ForumPost
	if err := scanPost(r.DB.QueryRow(ctx, postSelect+postFrom+` WHERE p.id = $1`, postId), &post); err != nil {
		return nil, mapError(err)
	}
	return &post, nil
}

// RecordPostView увеличивает счетчик просмотров поста.
func (r *PostgresForumRepository) RecordPostView(ctx context.Context, postId string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE forum_posts SET view_count = view_count + 1 WHERE id = $1`, postId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePost создает пост форума.
func (r *PostgresForumRepository) CreatePost(ctx context.Context, authorId string, postReq models.PostRequest) (*models.ForumPost, error) {
	postId := uuid.New().String()
	_, err := r.DB.Exec(ctx,
		`INSERT INTO forum_posts (id, author_id, category_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		postId, authorId, postReq.CategoryID, postReq.Title, postReq.Content, time.Now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	return r.GetPostById(ctx, postId)
}

// UpdatePost меняет переданные поля поста.
func (r *PostgresForumRepository) UpdatePost(ctx context.Context, postId string, update models.PostUpdate) (*models.ForumPost, error) {
	var updates []string
	args := []interface{}{postId}
	argIndex := 2

	if update.Title != nil {
		updates = append(updates, fmt.Sprintf("title = $%d", argIndex))
		args = append(args, *update.Title)
		argIndex++
	}
	if update.Content != nil {
		updates = append(updates, fmt.Sprintf("content = $%d", argIndex))
		args = append(args, *update.Content)
		argIndex++
	}
	if update.CategoryID != nil {
		updates = append(updates, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *update.CategoryID)
		argIndex++
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now().UTC())

	tag, err := r.DB.Exec(ctx, fmt.Sprintf("UPDATE forum_posts SET %s WHERE id = $1", strings.Join(updates, ", ")), args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetPostById(ctx, postId)
}

// GetComments возвращает комментарии поста от старых к новым без группировки.
func (r *PostgresForumRepository) GetComments(ctx context.Context, postId string) ([]models.ForumComment, error) {
	rows, err := r.DB.Query(ctx, commentSelect+` WHERE fc.post_id = $1 ORDER BY fc.created_at, fc.id`, postId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.ForumComment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

// GetCommentById возвращает комментарий по ID.
func (r *PostgresForumRepository) GetCommentById(ctx context.Context, commentId string) (*models.ForumComment, error) {
	return scanComment(r.DB.QueryRow(ctx, commentSelect+` WHERE fc.id = $1`, commentId))
}

// CreateComment добавляет комментарий и увеличивает счетчик комментариев поста.
func (r *PostgresForumRepository) CreateComment(ctx context.Context, comment models.ForumComment) (*models.ForumComment, error) {
	commentId := uuid.New().String()

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO forum_comments (id, post_id, author_id, parent_comment_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		commentId, comment.PostID, comment.Author.ID, comment.ParentCommentID, comment.Content, time.Now().UTC())
	if err != nil {
		return nil, mapError(err)
	}

	tag, err := tx.Exec(ctx, `UPDATE forum_posts SET comment_count = comment_count + 1 WHERE id = $1`, comment.PostID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	created, err := scanComment(tx.QueryRow(ctx, commentSelect+` WHERE fc.id = $1`, commentId))
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateComment меняет текст комментария.
func (r *PostgresForumRepository) UpdateComment(ctx context.Context, commentId, content string) (*models.ForumComment, error) {
	tag, err := r.DB.Exec(ctx, `UPDATE forum_comments SET content = $1, updated_at = $2 WHERE id = $3`,
		content, time.Now().UTC(), commentId)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetCommentById(ctx, commentId)
}

// CastVote переключает голос пользователя и пересчитывает vote_count в одной транзакции.
func (r *PostgresForumRepository) CastVote(ctx context.Context, userId string, votableType models.VotableType, votableId string, direction models.VoteDirection) (*models.VoteResult, error) {
	table, ok := votableTables[votableType]
	if !ok {
		return nil, fmt.Errorf("unsupported votable type: %s", votableType)
	}
	value := direction.Value()

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result := &models.VoteResult{VotableType: votableType, VotableID: votableId}
	var voteId string
	var existing int
	err = tx.QueryRow(ctx,
		`SELECT id, direction FROM forum_votes WHERE user_id = $1 AND votable_type = $2 AND votable_id = $3 FOR UPDATE`,
		userId, votableType, votableId).Scan(&voteId, &existing)

	var delta int
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err = tx.Exec(ctx,
			`INSERT INTO forum_votes (id, user_id, votable_type, votable_id, direction, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), userId, votableType, votableId, value, time.Now().UTC())
		if err != nil {
			return nil, mapError(err)
		}
		delta = value
		result.Direction = &direction
	case err != nil:
		return nil, err
	case existing == value:
		if _, err = tx.Exec(ctx, `DELETE FROM forum_votes WHERE id = $1`, voteId); err != nil {
			return nil, err
		}
		delta = -value
	default:
		if _, err = tx.Exec(ctx, `UPDATE forum_votes SET direction = $1 WHERE id = $2`, value, voteId); err != nil {
			return nil, err
		}
		delta = value - existing
		result.Direction = &direction
	}

	err = tx.QueryRow(ctx, fmt.Sprintf(`UPDATE %s SET vote_count = vote_count + $1 WHERE id = $2 RETURNING vote_count`, table),
		delta, votableId).Scan(&result.VoteCount)
	if err != nil {
		return nil, mapError(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}
