package repository

import (
	"context"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMessageRepository - реализация MessageRepository для базы данных.
type PostgresMessageRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresMessageRepository создает новый экземпляр PostgresMessageRepository.
func NewPostgresMessageRepository(db *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// CreateMessage сохраняет сообщение.
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()
	insertQuery := `INSERT INTO rfp_messages (id, rfp_id, sender_id, recipient_id, content, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.Exec(ctx, insertQuery, msg.ID, msg.RFPID, msg.SenderID, msg.RecipientID, msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &msg, nil
}

// GetThreadMessages возвращает переписку двух пользователей по RFP.
func (r *PostgresMessageRepository) GetThreadMessages(ctx context.Context, rfpId, userId, counterpartId string) ([]models.Message, error) {
	query := `
		SELECT id, rfp_id, sender_id, recipient_id, content, read_at, created_at
		FROM rfp_messages
		WHERE rfp_id = $1
		AND ((sender_id = $2 AND recipient_id = $3) OR (sender_id = $3 AND recipient_id = $2))
		ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, rfpId, userId, counterpartId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.RFPID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.ReadAt, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkAsRead отмечает прочитанными сообщения отправителя получателю по RFP.
func (r *PostgresMessageRepository) MarkAsRead(ctx context.Context, rfpId, senderId, recipientId string, readAt time.Time) (int64, error) {
	updateQuery := `
		UPDATE rfp_messages SET read_at = $1
		WHERE rfp_id = $2 AND sender_id = $3 AND recipient_id = $4 AND read_at IS NULL`
	tag, err := r.DB.Exec(ctx, updateQuery, readAt, rfpId, senderId, recipientId)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnread возвращает количество непрочитанных сообщений пользователя.
func (r *PostgresMessageRepository) CountUnread(ctx context.Context, recipientId string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM rfp_messages WHERE recipient_id = $1 AND read_at IS NULL`
	err := r.DB.QueryRow(ctx, query, recipientId).Scan(&count)
	return count, err
}

// GetUnreadByRFP группирует непрочитанные сообщения по RFP и отправителю.
func (r *PostgresMessageRepository) GetUnreadByRFP(ctx context.Context, recipientId string) ([]models.UnreadSummary, error) {
	query := `
		SELECT m.rfp_id, r.title, m.sender_id, u.full_name, COUNT(*)
		FROM rfp_messages m
		JOIN rfps r ON r.id = m.rfp_id
		JOIN users u ON u.id = m.sender_id
		WHERE m.recipient_id = $1 AND m.read_at IS NULL
		GROUP BY m.rfp_id, r.title, m.sender_id, u.full_name
		ORDER BY MAX(m.created_at) DESC`
	rows, err := r.DB.Query(ctx, query, recipientId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.UnreadSummary{}
	for rows.Next() {
		var summary models.UnreadSummary
		if err := rows.Scan(&summary.RFPID, &summary.RFPTitle, &summary.SenderID, &summary.SenderName, &summary.Count); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
