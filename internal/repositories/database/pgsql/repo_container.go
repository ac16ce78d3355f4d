package pgsql

import (
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewSubmissionRepository returns the PostgreSQL backed submission journal.
func NewSubmissionRepository(dbPool *pgxpool.Pool) portsrepo.SubmissionRepositoryFacade {
	return newPgxSubmissionRepository(dbPool)
}
