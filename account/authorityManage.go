package account

import (
	"context"
	"errors"
	"taskboard/authority"
	"taskboard/domain"
	"taskboard/persistence"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// DefaultSecurityConfiguration makes sure an initial administrator exists.
// An existing account with the same email is left untouched.
func DefaultSecurityConfiguration(email, password string) error {
	email = normalizeEmail(email)
	return persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Where("email = ?", email).First(&admin).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := HashPassword(password)
		if err != nil {
			return err
		}
		now := time.Now()
		admin = User{ID: domain.NewID(), Email: email, Password: hashed, FirstName: "Admin", LastName: "User",
			Role: authority.RoleAdmin, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		logrus.WithField("email", email).Info("initial administrator created")
		return nil
	})
}
