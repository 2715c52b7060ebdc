package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/orderdesk/internal/auth/domain"
	"github.com/smallbiznis/orderdesk/internal/auth/password"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

// EnsureAdmin seeds the bootstrap admin account for self-hosted
// startup. Existing accounts are left untouched, so rotating the
// password afterwards is safe.
func EnsureAdmin(db *gorm.DB, username, pass string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		username = defaultAdminUsername
	}
	if pass == "" {
		pass = defaultAdminPassword
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin authdomain.Admin
		err := tx.WithContext(ctx).
			Where("username = ?", username).
			First(&admin).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(pass)
		if err != nil {
			return err
		}
		admin = authdomain.Admin{
			ID:           node.Generate(),
			Username:     username,
			PasswordHash: hashed,
		}
		return tx.WithContext(ctx).Create(&admin).Error
	})
}
