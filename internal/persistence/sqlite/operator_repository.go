package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// OperatorRepository implements persistence.OperatorRepository using SQLite.
type OperatorRepository struct {
	pool *ConnectionPool
}

// NewOperatorRepository creates a new SQLite operator repository.
func NewOperatorRepository(pool *ConnectionPool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

const operatorColumns = `id, email, display_name, password_hash, is_admin, created_at, updated_at`

// CreateOperator inserts a new operator account. Emails are stored
// lowercase so the unique index is case-insensitive in practice.
func (r *OperatorRepository) CreateOperator(ctx context.Context, operator persistence.Operator) error {
	if operator.ID == "" || operator.Email == "" || operator.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO operators (`+operatorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		operator.ID,
		strings.ToLower(operator.Email),
		operator.DisplayName,
		operator.PasswordHash,
		operator.IsAdmin,
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateOperator updates an existing operator account.
func (r *OperatorRepository) UpdateOperator(ctx context.Context, operator persistence.Operator) error {
	if operator.ID == "" || operator.Email == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE operators
		SET email = ?, display_name = ?, password_hash = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`,
		strings.ToLower(operator.Email),
		operator.DisplayName,
		operator.PasswordHash,
		operator.IsAdmin,
		formatTime(time.Now()),
		operator.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// GetOperator retrieves an operator by ID.
func (r *OperatorRepository) GetOperator(ctx context.Context, id string) (persistence.Operator, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE id = ?`, id)
	return scanOperator(row)
}

// GetOperatorByEmail retrieves an operator by email address.
func (r *OperatorRepository) GetOperatorByEmail(ctx context.Context, email string) (persistence.Operator, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+operatorColumns+` FROM operators WHERE email = ?`, strings.ToLower(email))
	return scanOperator(row)
}

// ListOperators returns all operators ordered by email.
func (r *OperatorRepository) ListOperators(ctx context.Context) ([]persistence.Operator, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT `+operatorColumns+` FROM operators ORDER BY email ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var operators []persistence.Operator
	for rows.Next() {
		operator, err := scanOperator(rows)
		if err != nil {
			return nil, err
		}
		operators = append(operators, operator)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return operators, nil
}

// DeleteOperator removes an operator by ID.
func (r *OperatorRepository) DeleteOperator(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM operators WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

func scanOperator(row rowScanner) (persistence.Operator, error) {
	var operator persistence.Operator
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&operator.ID,
		&operator.Email,
		&operator.DisplayName,
		&operator.PasswordHash,
		&operator.IsAdmin,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Operator{}, mapError(err)
	}
	if operator.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Operator{}, err
	}
	if operator.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Operator{}, err
	}
	return operator, nil
}
