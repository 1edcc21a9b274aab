package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/Freeeeeet/makeup_scheduler/internal/repository/base"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate row")

type CredentialRepository struct {
	*base.Repository
}

func NewCredentialRepository(db base.DBTX) *CredentialRepository {
	return &CredentialRepository{Repository: base.NewRepository(db)}
}

// Create inserts a new faculty credential
func (r *CredentialRepository) Create(ctx context.Context, c *model.Credential) error {
	query := `
		INSERT INTO credentials (p_id, registered_name, pin)
		VALUES ($1, $2, $3)
	`

	_, err := r.ExecAffected(ctx, query, c.PID, c.RegisteredName, c.PinHash)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create credential %s: %w", c.PID, ErrDuplicate)
		}
		return fmt.Errorf("create credential: %w", err)
	}

	return nil
}

// GetByPID returns the credential or nil if the faculty id is unknown
func (r *CredentialRepository) GetByPID(ctx context.Context, pid string) (*model.Credential, error) {
	query := `
		SELECT p_id, registered_name, pin
		FROM credentials
		WHERE p_id = $1
	`

	var c model.Credential
	err := r.QueryRow(ctx, query, pid).Scan(&c.PID, &c.RegisteredName, &c.PinHash)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential by p_id: %w", err)
	}

	return &c, nil
}
