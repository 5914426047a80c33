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

type PgxProfileRepository struct {
	BaseRepository
}

func newPgxProfileRepository(pool *pgxpool.Pool) *PgxProfileRepository {
	return &PgxProfileRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ProfileRepositoryFacade = (*PgxProfileRepository)(nil)

const profileColumns = `profile_id, display_name, headline, location, sectors, bio, email, phone, linkedin_url,
	is_anonymized, is_active, is_completed, created_at, created_by, last_updated_at, last_updated_by`

func toModelProfile(d domain.CandidateProfile) models.CandidateProfile {
	sectors := d.Sectors
	if sectors == nil {
		sectors = []string{}
	}
	return models.CandidateProfile{
		ProfileID:    d.ProfileID,
		DisplayName:  d.DisplayName,
		Headline:     d.Headline,
		Location:     d.Location,
		Sectors:      sectors,
		Bio:          d.Bio,
		Email:        d.Email,
		Phone:        d.Phone,
		LinkedInURL:  d.LinkedInURL,
		IsAnonymized: d.IsAnonymized,
		IsActive:     d.IsActive,
		IsCompleted:  d.IsCompleted,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainProfile(m models.CandidateProfile) domain.CandidateProfile {
	return domain.CandidateProfile{
		ProfileID:    m.ProfileID,
		DisplayName:  m.DisplayName,
		Headline:     m.Headline,
		Location:     m.Location,
		Sectors:      m.Sectors,
		Bio:          m.Bio,
		Email:        m.Email,
		Phone:        m.Phone,
		LinkedInURL:  m.LinkedInURL,
		IsAnonymized: m.IsAnonymized,
		IsActive:     m.IsActive,
		IsCompleted:  m.IsCompleted,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanProfile(row pgx.Row) (domain.CandidateProfile, error) {
	var m models.CandidateProfile
	err := row.Scan(
		&m.ProfileID, &m.DisplayName, &m.Headline, &m.Location, &m.Sectors, &m.Bio, &m.Email, &m.Phone, &m.LinkedInURL,
		&m.IsAnonymized, &m.IsActive, &m.IsCompleted, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.CandidateProfile{}, err
	}
	return toDomainProfile(m), nil
}

func (r *PgxProfileRepository) SaveProfile(ctx context.Context, profile domain.CandidateProfile) error {
	m := toModelProfile(profile)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO candidate_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`,
		m.ProfileID, m.DisplayName, m.Headline, m.Location, m.Sectors, m.Bio, m.Email, m.Phone, m.LinkedInURL,
		m.IsAnonymized, m.IsActive, m.IsCompleted, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: profile with ID %s already exists", apperrors.ErrDuplicate, m.ProfileID)
		}
		return apperrors.Storage("insert profile", err)
	}
	return nil
}

func (r *PgxProfileRepository) FindProfileByID(ctx context.Context, profileID string) (*domain.CandidateProfile, error) {
	p, err := scanProfile(r.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM candidate_profiles WHERE profile_id = $1;`, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Storage("find profile", err)
	}
	return &p, nil
}

func (r *PgxProfileRepository) FindProfilesByIDs(ctx context.Context, profileIDs []string) ([]domain.CandidateProfile, error) {
	if len(profileIDs) == 0 {
		return []domain.CandidateProfile{}, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+profileColumns+` FROM candidate_profiles WHERE profile_id = ANY($1) ORDER BY profile_id;`, profileIDs)
	if err != nil {
		return nil, apperrors.Storage("find profiles", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func (r *PgxProfileRepository) ListActiveProfiles(ctx context.Context, limit int, nextToken *string) ([]domain.CandidateProfile, *string, error) {
	cursor, err := pagination.DecodeCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	query := `SELECT ` + profileColumns + ` FROM candidate_profiles WHERE is_active`
	args := []any{}
	if cursor != nil {
		query += ` AND (created_at, profile_id) < ($1, $2)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, profile_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.Storage("list profiles", err)
	}
	defer rows.Close()

	out, err := collectProfiles(rows)
	if err != nil {
		return nil, nil, err
	}
	fetched := len(out)
	if fetched > limit {
		out = out[:limit]
	}
	var next *string
	if len(out) > 0 {
		last := out[len(out)-1]
		next = pagination.NextToken(fetched, limit, last.CreatedAt, last.ProfileID)
	}
	return out, next, nil
}

func (r *PgxProfileRepository) UpdateProfileStatus(ctx context.Context, profileID string, isActive, isCompleted bool, actorID string, now time.Time) (*domain.CandidateProfile, error) {
	p, err := scanProfile(r.Pool.QueryRow(ctx, `
		UPDATE candidate_profiles
		SET is_active = $2, is_completed = $3, last_updated_at = $4, last_updated_by = $5
		WHERE profile_id = $1
		RETURNING `+profileColumns+`;`,
		profileID, isActive, isCompleted, now, actorID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Storage("update profile status", err)
	}
	return &p, nil
}

func collectProfiles(rows pgx.Rows) ([]domain.CandidateProfile, error) {
	out := []domain.CandidateProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperrors.Storage("scan profile", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("iterate profiles", err)
	}
	return out, nil
}
