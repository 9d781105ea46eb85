package models

import (
	"errors"
	"strings"

	"github.com/tourshop/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const fallbackAdminUsername = "admin"

// InitDefaultAdmin creates the first super admin when the table is empty.
// An empty password is refused so production never boots with a known secret.
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = fallbackAdminUsername
	}
	if strings.TrimSpace(password) == "" {
		logger.Warnw("default_admin_skipped", "reason", "empty_password", "username", username)
		return errors.New("default admin password is empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := Admin{
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		IsSuper:      true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}
	logger.Warnw("default_admin_created", "username", username)
	return nil
}
