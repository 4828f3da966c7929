package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const rfpColumns = `r.id, r.creator_id, cp.user_id, r.title, r.category, r.description, r.visibility, r.status,
	r.deadline, r.budget_min, r.budget_max, r.proposal_count, r.created_at, r.updated_at`

// PostgresRFPRepository - реализация RFPRepository для базы данных.
type PostgresRFPRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRFPRepository создаёт новый экземпляр PostgresRFPRepository.
func NewPostgresRFPRepository(db *pgxpool.Pool) *PostgresRFPRepository {
	return &PostgresRFPRepository{DB: db}
}

func scanRFP(row pgx.Row, rfp *models.RFP, extra ...any) error {
	dest := []any{
		&rfp.ID,
		&rfp.CreatorID,
		&rfp.CreatorUserID,
		&rfp.Title,
		&rfp.Category,
		&rfp.Description,
		&rfp.Visibility,
		&rfp.Status,
		&rfp.Deadline,
		&rfp.BudgetMin,
		&rfp.BudgetMax,
		&rfp.ProposalCount,
		&rfp.CreatedAt,
		&rfp.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// CreateRFP создает RFP вместе с закрытыми деталями в одной транзакции.
func (r *PostgresRFPRepository) CreateRFP(ctx context.Context, creatorID string, rfpReq models.RFPRequest) (*models.RFP, error) {
	now := time.Now().UTC()
	newRFP := models.RFP{
		ID:          uuid.New().String(),
		CreatorID:   creatorID,
		Title:       rfpReq.Title,
		Category:    rfpReq.Category,
		Description: rfpReq.Description,
		Visibility:  rfpReq.Visibility,
		Status:      models.OpenRFP,
		Deadline:    rfpReq.Deadline,
		BudgetMin:   rfpReq.BudgetMin,
		BudgetMax:   rfpReq.BudgetMax,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO rfps (id, creator_id, title, category, description, visibility, status, deadline, budget_min, budget_max, proposal_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $11)
		RETURNING (SELECT user_id FROM community_profiles WHERE id = $2)`,
		newRFP.ID,
		newRFP.CreatorID,
		newRFP.Title,
		newRFP.Category,
		newRFP.Description,
		newRFP.Visibility,
		newRFP.Status,
		newRFP.Deadline,
		newRFP.BudgetMin,
		newRFP.BudgetMax,
		newRFP.CreatedAt).Scan(&newRFP.CreatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rfp: %w", mapError(err))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rfp_private_details (id, rfp_id, property_address, contact_name, contact_email, contact_phone, detailed_scope, special_requirements, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(),
		newRFP.ID,
		rfpReq.PropertyAddress,
		rfpReq.ContactName,
		rfpReq.ContactEmail,
		rfpReq.ContactPhone,
		rfpReq.DetailedScope,
		rfpReq.SpecialRequirements,
		[]models.Attachment{})
	if err != nil {
		return nil, fmt.Errorf("failed to insert rfp private details: %w", mapError(err))
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &newRFP, nil
}

const rfpFrom = `
		FROM rfps r
		JOIN community_profiles cp ON cp.id = r.creator_id`

// rfpFilterClause собирает условие WHERE для фильтра списка RFP.
func rfpFilterClause(filter models.RFPFilter) (string, []interface{}) {
	var filters []string
	var args []interface{}
	argIndex := 1

	if filter.Status != "" {
		filters = append(filters, fmt.Sprintf("r.status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Visibility != "" {
		filters = append(filters, fmt.Sprintf("r.visibility = $%d", argIndex))
		args = append(args, filter.Visibility)
		argIndex++
	}
	if len(filter.Categories) > 0 {
		filters = append(filters, fmt.Sprintf("r.category = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.Categories))
		argIndex++
	}
	if filter.CreatorUserID != "" {
		filters = append(filters, fmt.Sprintf("cp.user_id = $%d", argIndex))
		args = append(args, filter.CreatorUserID)
	}

	if len(filters) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(filters, " AND "), args
}

// GetRFPs возвращает страницу RFP по фильтру и общее количество.
func (r *PostgresRFPRepository) GetRFPs(ctx context.Context, filter models.RFPFilter) ([]models.RFP, int, error) {
	where, args := rfpFilterClause(filter)
	query := `SELECT ` + rfpColumns + `, COUNT(*) OVER()` + rfpFrom + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := r.DB.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rfps := []models.RFP{}
	total := 0
	for rows.Next() {
		var rfp models.RFP
		if err := scanRFP(rows, &rfp, &total); err != nil {
			return nil, 0, err
		}
		rfps = append(rfps, rfp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// За пределами последней страницы оконная функция не возвращает строк.
	if len(rfps) == 0 && filter.Offset > 0 {
		if err := r.DB.QueryRow(ctx, `SELECT COUNT(*)`+rfpFrom+where, args...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return rfps, total, nil
}

// GetRFPById возвращает RFP по ID.
func (r *PostgresRFPRepository) GetRFPById(ctx context.Context, rfpId string) (*models.RFP, error) {
	var rfp models.RFP
	query := `SELECT ` + rfpColumns + `
		FROM rfps r
		JOIN community_profiles cp ON cp.id = r.creator_id
		WHERE r.id = $1`
	if err := scanRFP(r.DB.QueryRow(ctx, query, rfpId), &rfp); err != nil {
		return nil, mapError(err)
	}
	return &rfp, nil
}

// GetPrivateDetails возвращает закрытые детали RFP.
func (r *PostgresRFPRepository) GetPrivateDetails(ctx context.Context, rfpId string) (*models.RFPPrivateDetails, error) {
	var details models.RFPPrivateDetails
	query := `SELECT id, rfp_id, property_address, contact_name, contact_email, contact_phone, detailed_scope, special_requirements, attachments
	          FROM rfp_private_details WHERE rfp_id = $1`
	err := r.DB.QueryRow(ctx, query, rfpId).Scan(
		&details.ID,
		&details.RFPID,
		&details.PropertyAddress,
		&details.ContactName,
		&details.ContactEmail,
		&details.ContactPhone,
		&details.DetailedScope,
		&details.SpecialRequirements,
		&details.Attachments,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &details, nil
}

// UpdateRFPStatus меняет статус RFP.
func (r *PostgresRFPRepository) UpdateRFPStatus(ctx context.Context, rfpId string, status models.RFPStatus) (*models.RFP, error) {
	updateQuery := `UPDATE rfps SET status = $1, updated_at = $2 WHERE id = $3`
	tag, err := r.DB.Exec(ctx, updateQuery, status, time.Now().UTC(), rfpId)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetRFPById(ctx, rfpId)
}

// Ping проверяет соединение с базой данных.
func (r *PostgresRFPRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
