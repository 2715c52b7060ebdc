package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateInput struct {
	Username string
	Name     string
	Password string
}

type UpdateInput struct {
	Name     string
	Password string // empty keeps the current password
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (Customer, error)
	Get(ctx context.Context, id snowflake.ID) (*Customer, error)
	GetByUsername(ctx context.Context, username string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	Update(ctx context.Context, id snowflake.ID, in UpdateInput) (Customer, error)

	// Delete removes the customer together with its catalog, ledger
	// rows and history snapshots.
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidPassword = errors.New("invalid_password")
)
