package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoAccount is returned by repositories when no account matches.
var ErrNoAccount = errors.New("account not found")

// ErrDuplicateMobile is returned by Create when another account already
// holds the mobile number. Two concurrent registrations can both pass
// the service's existence check; the UNIQUE constraint settles it.
var ErrDuplicateMobile = errors.New("mobile number already taken")

// Repository persists accounts. Every write is a single atomic
// statement; the service layer never needs a multi-row transaction.
type Repository interface {
	// Create inserts a new account and assigns its identity.
	Create(ctx context.Context, a Account) (Account, error)
	FindByMobileNumber(ctx context.Context, mobileNumber string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	// ReplacePending overwrites profile and credential of a still-pending
	// account in place, keeping its identity.
	ReplacePending(ctx context.Context, id string, profile Profile, credentialHash []byte, at time.Time) error
	// Activate atomically flips the matching account to Active and
	// returns it.
	Activate(ctx context.Context, mobileNumber string) (Account, error)
	// UpdateCredential atomically overwrites the credential hash and its
	// change timestamp.
	UpdateCredential(ctx context.Context, id string, credentialHash []byte, at time.Time) error
}

const accountColumns = `id, mobile_number, name, email, credential_hash, state, role, credential_updated_at, created_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a Account) (Account, error) {
	a.ID = uuid.NewString()
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.MobileNumber, a.Name, a.Email, a.CredentialHash,
		a.State, a.Role, a.CredentialUpdatedAt.UTC(), a.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Account{}, ErrDuplicateMobile
	}
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindByMobileNumber(ctx context.Context, mobileNumber string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE mobile_number = $1`, mobileNumber)
	return scanAccount(row)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNoAccount
	}
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

func (r *PostgresRepository) ReplacePending(ctx context.Context, id string, profile Profile, credentialHash []byte, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts
        SET name = $1, email = $2, credential_hash = $3, credential_updated_at = $4
        WHERE id = $5 AND state = $6`,
		profile.Name, profile.Email, credentialHash, at.UTC(), id, StatePending)
	if err != nil {
		return fmt.Errorf("replace pending account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoAccount
	}
	return nil
}

func (r *PostgresRepository) Activate(ctx context.Context, mobileNumber string) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounts SET state = $1
        WHERE mobile_number = $2
        RETURNING `+accountColumns, StateActive, mobileNumber)
	return scanAccount(row)
}

func (r *PostgresRepository) UpdateCredential(ctx context.Context, id string, credentialHash []byte, at time.Time) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNoAccount
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts
        SET credential_hash = $1, credential_updated_at = $2
        WHERE id = $3`, credentialHash, at.UTC(), accountID)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoAccount
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		id uuid.UUID
		a  Account
	)
	err := row.Scan(&id, &a.MobileNumber, &a.Name, &a.Email, &a.CredentialHash,
		&a.State, &a.Role, &a.CredentialUpdatedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNoAccount
	}
	if err != nil {
		return Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.ID = id.String()
	a.CredentialUpdatedAt = a.CredentialUpdatedAt.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}
