package repository

import (
	"context"
	"time"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const approvalSelect = `
	SELECT a.id, a.rfp_id, a.vendor_id, vp.user_id, cp.user_id, a.status, a.requested_at, a.approved_at, r.title, vp.company_name
	FROM rfp_approved_vendors a
	JOIN vendor_profiles vp ON vp.id = a.vendor_id
	JOIN rfps r ON r.id = a.rfp_id
	JOIN community_profiles cp ON cp.id = r.creator_id`

// PostgresApprovalRepository - реализация ApprovalRepository для базы данных.
type PostgresApprovalRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresApprovalRepository создаёт новый экземпляр PostgresApprovalRepository.
func NewPostgresApprovalRepository(db *pgxpool.Pool) *PostgresApprovalRepository {
	return &PostgresApprovalRepository{DB: db}
}

func scanApproval(row pgx.Row) (*models.VendorApprovalRequest, error) {
	var approval models.VendorApprovalRequest
	err := row.Scan(
		&approval.ID,
		&approval.RFPID,
		&approval.VendorID,
		&approval.VendorUserID,
		&approval.RFPCreatorUserID,
		&approval.Status,
		&approval.RequestedAt,
		&approval.ApprovedAt,
		&approval.RFPTitle,
		&approval.CompanyName,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &approval, nil
}

func (r *PostgresApprovalRepository) queryApprovals(ctx context.Context, query string, args ...any) ([]models.VendorApprovalRequest, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := []models.VendorApprovalRequest{}
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, *approval)
	}
	return approvals, rows.Err()
}

// CreateApproval создает заявку подрядчика в статусе pending.
func (r *PostgresApprovalRepository) CreateApproval(ctx context.Context, rfpId, vendorId string) (*models.VendorApprovalRequest, error) {
	approvalId := uuid.New().String()
	insertQuery := `INSERT INTO rfp_approved_vendors (id, rfp_id, vendor_id, status, requested_at)
                   VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.Exec(ctx, insertQuery, approvalId, rfpId, vendorId, models.ApprovalPending, time.Now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	return r.GetApprovalById(ctx, approvalId)
}

// GetApprovalById возвращает заявку вместе с автором RFP.
func (r *PostgresApprovalRepository) GetApprovalById(ctx context.Context, approvalId string) (*models.VendorApprovalRequest, error) {
	return scanApproval(r.DB.QueryRow(ctx, approvalSelect+` WHERE a.id = $1`, approvalId))
}

// GetVendorApproval возвращает заявку подрядчика на конкретный RFP.
func (r *PostgresApprovalRepository) GetVendorApproval(ctx context.Context, rfpId, vendorId string) (*models.VendorApprovalRequest, error) {
	return scanApproval(r.DB.QueryRow(ctx, approvalSelect+` WHERE a.rfp_id = $1 AND a.vendor_id = $2`, rfpId, vendorId))
}

// ResolveApproval фиксирует решение по заявке, только пока она в статусе pending.
func (r *PostgresApprovalRepository) ResolveApproval(ctx context.Context, approvalId string, status models.ApprovalStatus, approvedAt *time.Time) (*models.VendorApprovalRequest, error) {
	updateQuery := `UPDATE rfp_approved_vendors SET status = $1, approved_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.DB.Exec(ctx, updateQuery, status, approvedAt, approvalId, models.ApprovalPending)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflict
	}
	return r.GetApprovalById(ctx, approvalId)
}

// GetPendingApprovals возвращает ожидающие заявки по всем RFP пользователя.
func (r *PostgresApprovalRepository) GetPendingApprovals(ctx context.Context, creatorUserId string) ([]models.VendorApprovalRequest, error) {
	query := approvalSelect + ` WHERE a.status = $1 AND cp.user_id = $2 ORDER BY a.requested_at DESC`
	return r.queryApprovals(ctx, query, models.ApprovalPending, creatorUserId)
}

// GetRFPApprovals возвращает все заявки по RFP.
func (r *PostgresApprovalRepository) GetRFPApprovals(ctx context.Context, rfpId string) ([]models.VendorApprovalRequest, error) {
	query := approvalSelect + ` WHERE a.rfp_id = $1 ORDER BY a.requested_at DESC`
	return r.queryApprovals(ctx, query, rfpId)
}
