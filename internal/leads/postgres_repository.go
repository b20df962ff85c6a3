package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/leadflow/internal/leads/filter"
)

const uniqueViolation = "23505"

const leadColumns = `id, user_id, first_name, last_name, email, phone, company, city, state,
	source, status, score, lead_value, is_qualified, last_activity_at, created_at, updated_at`

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q querier) *PostgresRepository {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{pool: q}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := newLead(uuid.New().String(), req, time.Time{})
	query := `
		INSERT INTO leads (id, user_id, first_name, last_name, email, phone, company, city, state,
			source, status, score, lead_value, is_qualified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		lead.ID,
		lead.UserID,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.City,
		lead.State,
		lead.Source,
		lead.Status,
		lead.Score,
		lead.LeadValue,
		lead.IsQualified,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

// Import inserts lead verbatim, including its timestamps.
func (r *PostgresRepository) Import(ctx context.Context, lead *Lead) error {
	if lead.UserID == "" {
		return ErrMissingOwner
	}
	query := `INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.pool.Exec(ctx, query,
		lead.ID,
		lead.UserID,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.City,
		lead.State,
		lead.Source,
		lead.Status,
		lead.Score,
		lead.LeadValue,
		lead.IsQualified,
		lead.LastActivityAt,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("leads: import failed: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every lead owned by userID and reports how many went.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("leads: delete all failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

// GetByID fetches a lead scoped to the owner.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidLeadID
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// Update writes the supplied fields in one statement and stamps last activity.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, req *UpdateLeadRequest) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidLeadID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sets, args := updateAssignments(req)
	sets = append(sets, "last_activity_at = now()", "updated_at = now()")
	args = append(args, id, userID)
	query := `UPDATE leads SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)-1) +
		` AND user_id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("leads: update failed: %w", err)
	}
	return lead, nil
}

// Delete removes a lead owned by userID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidLeadID
	}

	ct, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// Find returns one page of the owner's matching leads, newest first.
func (r *PostgresRepository) Find(ctx context.Context, userID string, pred filter.Predicate, skip, limit int) ([]*Lead, error) {
	where, args := buildWhere(userID, pred)
	args = append(args, limit, skip)
	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + where +
		` ORDER BY created_at DESC, id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: find failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: find failed: %w", err)
	}
	return out, nil
}

// Count returns how many of the owner's leads match pred.
func (r *PostgresRepository) Count(ctx context.Context, userID string, pred filter.Predicate) (int, error) {
	where, args := buildWhere(userID, pred)
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("leads: count failed: %w", err)
	}
	return int(total), nil
}

func updateAssignments(req *UpdateLeadRequest) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	text := func(column string, value *string) {
		if value != nil {
			add(column, *value)
		}
	}

	text("first_name", req.FirstName)
	text("last_name", req.LastName)
	text("email", req.Email)
	text("phone", req.Phone)
	text("company", req.Company)
	text("city", req.City)
	text("state", req.State)
	text("source", req.Source)
	text("status", req.Status)
	if req.Score != nil {
		add("score", *req.Score)
	}
	if req.LeadValue != nil {
		add("lead_value", *req.LeadValue)
	}
	if req.IsQualified != nil {
		add("is_qualified", *req.IsQualified)
	}
	return sets, args
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.UserID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.City,
		&lead.State,
		&lead.Source,
		&lead.Status,
		&lead.Score,
		&lead.LeadValue,
		&lead.IsQualified,
		&lead.LastActivityAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
