package postgres

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"airport-service/internal/models"
	"airport-service/internal/repository"
)

type UserRepo struct {
	db *gorm.DB
}

func (r *UserRepo) CreateUser(u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	return translate(r.db.Create(u).Error)
}

func (r *UserRepo) SaveUser(u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	return translate(r.db.Save(u).Error)
}

func (r *UserRepo) GetUser(id uuid.UUID) (models.User, error) {
	var u models.User
	err := r.db.Where("id = ?", id).First(&u).Error
	return u, translate(err)
}

func (r *UserRepo) GetUserByEmail(email string) (models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", models.NormalizeEmail(email)).First(&u).Error
	return u, translate(err)
}

type TokenRepo struct {
	db *gorm.DB
}

func (r *TokenRepo) BlacklistToken(t *models.BlacklistedToken) error {
	err := translate(r.db.Create(t).Error)
	if _, dup := err.(*repository.DuplicateError); dup {
		// already revoked
		return nil
	}
	return err
}

func (r *TokenRepo) IsBlacklisted(jti string) (bool, error) {
	var n int
	err := r.db.Model(&models.BlacklistedToken{}).Where("jti = ?", jti).Count(&n).Error
	return n > 0, translate(err)
}
