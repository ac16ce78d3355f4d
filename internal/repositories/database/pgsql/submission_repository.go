package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	"github.com/SscSPs/exchange_desk/internal/models"
	"github.com/SscSPs/exchange_desk/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSubmissionRepository stores the exchange submission journal in PostgreSQL.
type PgxSubmissionRepository struct {
	BaseRepository
}

// newPgxSubmissionRepository creates a new repository instance.
func newPgxSubmissionRepository(pool *pgxpool.Pool) *PgxSubmissionRepository {
	return &PgxSubmissionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var (
	_ portsrepo.SubmissionRepositoryFacade = (*PgxSubmissionRepository)(nil)
	_ portsrepo.TransactionManager         = (*PgxSubmissionRepository)(nil)
)

// maxSubmissionsPerMember matches the in-memory journal's retention.
const maxSubmissionsPerMember = 200

// SaveSubmission inserts one attempt and drops the member's rows beyond the
// retention limit in the same transaction.
func (r *PgxSubmissionRepository) SaveSubmission(ctx context.Context, record domain.SubmissionRecord) error {
	m := mapping.ToModelSubmission(record)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	insert := `
		INSERT INTO exchange_submissions (
			submission_id, member_id, rate_id, source_currency, target_currency,
			amount, status, error_kind, message, created_at
		) VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9, $10);
	`
	_, err = tx.Exec(ctx, insert,
		m.SubmissionID, m.MemberID, m.RateID, m.SourceCurrency, m.TargetCurrency,
		m.Amount, m.Status, m.ErrorKind, m.Message, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission %s: %w", m.SubmissionID, err)
	}

	prune := `
		DELETE FROM exchange_submissions
		WHERE member_id = $1 AND submission_id NOT IN (
			SELECT submission_id FROM exchange_submissions
			WHERE member_id = $1
			ORDER BY created_at DESC, submission_id
			LIMIT $2
		);
	`
	if _, err := tx.Exec(ctx, prune, m.MemberID, maxSubmissionsPerMember); err != nil {
		return fmt.Errorf("failed to prune submissions for member %s: %w", m.MemberID, err)
	}

	return r.Commit(ctx, tx)
}

// ListSubmissions returns the member's most recent attempts, newest first.
func (r *PgxSubmissionRepository) ListSubmissions(ctx context.Context, memberID string, limit int) ([]domain.SubmissionRecord, error) {
	query := `
		SELECT submission_id::text, member_id, COALESCE(rate_id, 0), COALESCE(source_currency, ''),
			COALESCE(target_currency, ''), amount, status, COALESCE(error_kind, ''), message, created_at
		FROM exchange_submissions
		WHERE member_id = $1
		ORDER BY created_at DESC, submission_id
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions for member %s: %w", memberID, err)
	}

	ms, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.ExchangeSubmission])
	if err != nil {
		return nil, fmt.Errorf("failed to scan submissions for member %s: %w", memberID, err)
	}
	return mapping.ToDomainSubmissions(ms), nil
}
