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

const proposalSelect = `
	SELECT p.id, p.rfp_id, p.vendor_id, vp.user_id, p.cover_letter, p.timeline, p.cost, p.payment_terms,
	       p.attachments, p.status, p.created_at, p.updated_at
	FROM proposals p
	JOIN vendor_profiles vp ON vp.id = p.vendor_id`

// PostgresProposalRepository - реализация ProposalRepository для базы данных.
type PostgresProposalRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProposalRepository создает новый экземпляр PostgresProposalRepository.
func NewPostgresProposalRepository(db *pgxpool.Pool) *PostgresProposalRepository {
	return &PostgresProposalRepository{DB: db}
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var proposal models.Proposal
	err := row.Scan(
		&proposal.ID,
		&proposal.RFPID,
		&proposal.VendorID,
		&proposal.VendorUserID,
		&proposal.CoverLetter,
		&proposal.Timeline,
		&proposal.Cost,
		&proposal.PaymentTerms,
		&proposal.Attachments,
		&proposal.Status,
		&proposal.CreatedAt,
		&proposal.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &proposal, nil
}

// CreateProposal создает предложение и увеличивает счетчик предложений RFP.
func (r *PostgresProposalRepository) CreateProposal(ctx context.Context, vendorId string, proposalReq models.ProposalRequest) (*models.Proposal, error) {
	now := time.Now().UTC()
	proposalId := uuid.New().String()

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	insertQuery := `INSERT INTO proposals (id, rfp_id, vendor_id, cover_letter, timeline, cost, payment_terms, attachments, status, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	_, err = tx.Exec(
		ctx,
		insertQuery,
		proposalId,
		proposalReq.RFPID,
		vendorId,
		proposalReq.CoverLetter,
		proposalReq.Timeline,
		proposalReq.Cost,
		proposalReq.PaymentTerms,
		[]models.Attachment{},
		models.SubmittedProposal,
		now)
	if err != nil {
		return nil, mapError(err)
	}

	_, err = tx.Exec(ctx, `UPDATE rfps SET proposal_count = proposal_count + 1 WHERE id = $1`, proposalReq.RFPID)
	if err != nil {
		return nil, err
	}

	proposal, err := scanProposal(tx.QueryRow(ctx, proposalSelect+` WHERE p.id = $1`, proposalId))
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return proposal, nil
}

// GetProposalById возвращает предложение по ID.
func (r *PostgresProposalRepository) GetProposalById(ctx context.Context, proposalId string) (*models.Proposal, error) {
	return scanProposal(r.DB.QueryRow(ctx, proposalSelect+` WHERE p.id = $1`, proposalId))
}

// GetVendorProposal возвращает предложение подрядчика по RFP.
func (r *PostgresProposalRepository) GetVendorProposal(ctx context.Context, rfpId, vendorId string) (*models.Proposal, error) {
	return scanProposal(r.DB.QueryRow(ctx, proposalSelect+` WHERE p.rfp_id = $1 AND p.vendor_id = $2`, rfpId, vendorId))
}

// GetRFPProposals возвращает список предложений по RFP.
func (r *PostgresProposalRepository) GetRFPProposals(ctx context.Context, rfpId string) ([]models.Proposal, error) {
	rows, err := r.DB.Query(ctx, proposalSelect+` WHERE p.rfp_id = $1 ORDER BY p.created_at DESC`, rfpId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *proposal)
	}
	return proposals, rows.Err()
}

// EditProposal меняет поля предложения, пока оно в статусе submitted.
func (r *PostgresProposalRepository) EditProposal(ctx context.Context, proposalId string, update models.ProposalUpdate) (*models.Proposal, error) {
	var updates []string
	args := []interface{}{proposalId, models.SubmittedProposal}
	argIndex := 3

	if update.CoverLetter != nil {
		updates = append(updates, fmt.Sprintf("cover_letter = $%d", argIndex))
		args = append(args, *update.CoverLetter)
		argIndex++
	}
	if update.Timeline != nil {
		updates = append(updates, fmt.Sprintf("timeline = $%d", argIndex))
		args = append(args, *update.Timeline)
		argIndex++
	}
	if update.Cost != nil {
		updates = append(updates, fmt.Sprintf("cost = $%d", argIndex))
		args = append(args, *update.Cost)
		argIndex++
	}
	if update.PaymentTerms != nil {
		updates = append(updates, fmt.Sprintf("payment_terms = $%d", argIndex))
		args = append(args, *update.PaymentTerms)
		argIndex++
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now().UTC())

	updateQuery := fmt.Sprintf("UPDATE proposals SET %s WHERE id = $1 AND status = $2", strings.Join(updates, ", "))
	tag, err := r.DB.Exec(ctx, updateQuery, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflict
	}
	return r.GetProposalById(ctx, proposalId)
}

// UpdateProposalStatus меняет статус предложения, если текущий статус равен from.
func (r *PostgresProposalRepository) UpdateProposalStatus(ctx context.Context, proposalId string, from, to models.ProposalStatus) (*models.Proposal, error) {
	updateQuery := `UPDATE proposals SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.DB.Exec(ctx, updateQuery, to, time.Now().UTC(), proposalId, from)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflict
	}
	return r.GetProposalById(ctx, proposalId)
}

// AcceptProposal принимает предложение и переводит RFP в awarded в одной транзакции.
// Возвращает ErrConflict, если статус предложения изменился, по RFP уже есть принятое
// предложение или RFP больше не рассматривает предложения.
func (r *PostgresProposalRepository) AcceptProposal(ctx context.Context, proposalId string, from models.ProposalStatus) (*models.Proposal, error) {
	now := time.Now().UTC()

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var rfpId string
	err = tx.QueryRow(ctx, `
		UPDATE proposals p SET status = $1, updated_at = $2
		WHERE p.id = $3 AND p.status = $4
		AND NOT EXISTS (SELECT 1 FROM proposals o WHERE o.rfp_id = p.rfp_id AND o.status = $1)
		RETURNING p.rfp_id`,
		models.AcceptedProposal, now, proposalId, from).Scan(&rfpId)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	// Строка RFP блокируется, поэтому из параллельных принятий проходит только одно.
	tag, err := tx.Exec(ctx, `UPDATE rfps SET status = $1, updated_at = $2 WHERE id = $3 AND status IN ($4, $5)`,
		models.AwardedRFP, now, rfpId, models.OpenRFP, models.ReviewingRFP)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflict
	}

	proposal, err := scanProposal(tx.QueryRow(ctx, proposalSelect+` WHERE p.id = $1`, proposalId))
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return proposal, nil
}
