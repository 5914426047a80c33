package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	"github.com/pabg92/ned-project-bw-sub001/internal/models"
	"github.com/pabg92/ned-project-bw-sub001/internal/utils/pagination"
)

type PgxCompanyRepository struct {
	BaseRepository
	ledger *PgxLedgerRepository
}

func newPgxCompanyRepository(pool *pgxpool.Pool, ledger *PgxLedgerRepository) *PgxCompanyRepository {
	return &PgxCompanyRepository{BaseRepository: BaseRepository{Pool: pool}, ledger: ledger}
}

var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

const companyColumns = `c.company_id, c.name, c.verification_status, c.admin_notes, c.risk_score, c.verified_by, c.verified_at,
	c.created_at, c.created_by, c.last_updated_at, c.last_updated_by`

func toModelCompany(d domain.Company) models.Company {
	m := models.Company{
		CompanyID:          d.CompanyID,
		Name:               d.Name,
		VerificationStatus: string(d.Enrichment.VerificationStatus),
		AdminNotes:         d.Enrichment.AdminNotes,
		VerifiedBy:         d.Enrichment.VerifiedBy,
		VerifiedAt:         d.Enrichment.VerifiedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if d.Enrichment.RiskScore != nil {
		score := int32(*d.Enrichment.RiskScore)
		m.RiskScore = &score
	}
	return m
}

func toDomainCompany(m models.Company) domain.Company {
	d := domain.Company{
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Enrichment: domain.CompanyEnrichment{
			VerificationStatus: domain.VerificationStatus(m.VerificationStatus),
			AdminNotes:         m.AdminNotes,
			VerifiedBy:         m.VerifiedBy,
			VerifiedAt:         m.VerifiedAt,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.RiskScore != nil {
		score := int(*m.RiskScore)
		d.Enrichment.RiskScore = &score
	}
	return d
}

func companyScanTargets(m *models.Company) []any {
	return []any{
		&m.CompanyID, &m.Name, &m.VerificationStatus, &m.AdminNotes, &m.RiskScore, &m.VerifiedBy, &m.VerifiedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	}
}

// SaveCompany inserts the company, its credit account and the optional
// opening entry in one transaction. The opening entry goes through the ledger
// append path, so the ledger hook sees it too.
func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company, opening *domain.LedgerEntryInput) (*domain.LedgerEntry, error) {
	m := toModelCompany(company)

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO companies (company_id, name, verification_status, admin_notes, risk_score, verified_by, verified_at,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		m.CompanyID, m.Name, m.VerificationStatus, m.AdminNotes, m.RiskScore, m.VerifiedBy, m.VerifiedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("%w: company with ID %s already exists", apperrors.ErrDuplicate, m.CompanyID)
		}
		return nil, apperrors.Storage("insert company", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO credit_accounts (company_id, balance, updated_at) VALUES ($1, 0, $2);`, m.CompanyID, m.CreatedAt)
	if err != nil {
		return nil, apperrors.Storage("insert credit account", err)
	}

	var entry *domain.LedgerEntry
	if opening != nil {
		in := *opening
		in.CompanyID = m.CompanyID
		if entry, err = r.ledger.appendTx(ctx, tx, in); err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	var m models.Company
	err := r.Pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies c WHERE c.company_id = $1;`, companyID).
		Scan(companyScanTargets(&m)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Storage("find company", err)
	}
	d := toDomainCompany(m)
	return &d, nil
}

// ListCompanies pages companies by (created_at DESC, company_id DESC), fetching
// one extra row to learn whether a next page exists.
func (r *PgxCompanyRepository) ListCompanies(ctx context.Context, limit int, nextToken *string) ([]domain.CompanyWithBalance, *string, error) {
	cursor, err := pagination.DecodeCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	query := `SELECT ` + companyColumns + `, a.balance
		FROM companies c JOIN credit_accounts a ON a.company_id = c.company_id`
	args := []any{}
	if cursor != nil {
		query += ` WHERE (c.created_at, c.company_id) < ($1, $2)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY c.created_at DESC, c.company_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.Storage("list companies", err)
	}
	defer rows.Close()

	out := make([]domain.CompanyWithBalance, 0, limit)
	for rows.Next() {
		var m models.Company
		var balance int64
		if err := rows.Scan(append(companyScanTargets(&m), &balance)...); err != nil {
			return nil, nil, apperrors.Storage("scan company", err)
		}
		out = append(out, domain.CompanyWithBalance{Company: toDomainCompany(m), Balance: balance})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.Storage("iterate companies", err)
	}

	fetched := len(out)
	if fetched > limit {
		out = out[:limit]
	}
	var next *string
	if len(out) > 0 {
		last := out[len(out)-1]
		next = pagination.NextToken(fetched, limit, last.CreatedAt, last.CompanyID)
	}
	return out, next, nil
}

func (r *PgxCompanyRepository) UpdateEnrichment(ctx context.Context, companyID string, enrichment domain.CompanyEnrichment, actorID string, now time.Time) (*domain.Company, error) {
	m := toModelCompany(domain.Company{Enrichment: enrichment})
	var out models.Company
	err := r.Pool.QueryRow(ctx, `
		UPDATE companies c
		SET verification_status = $2, admin_notes = $3, risk_score = $4, verified_by = $5, verified_at = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE c.company_id = $1
		RETURNING `+companyColumns+`;`,
		companyID, m.VerificationStatus, m.AdminNotes, m.RiskScore, m.VerifiedBy, m.VerifiedAt, now, actorID,
	).Scan(companyScanTargets(&out)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Storage("update company enrichment", err)
	}
	d := toDomainCompany(out)
	return &d, nil
}
