package repository

import (
	"errors"

	"github.com/jhstephenson/callingtrack/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Groups").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Groups").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetGroups replaces the user's group memberships with the named groups.
// Unknown group names are rejected rather than silently created.
func (r *GormUserRepository) SetGroups(userID uint64, groupNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var groups []models.Group
		if len(groupNames) > 0 {
			if err := tx.Where("name IN ?", groupNames).Find(&groups).Error; err != nil {
				return err
			}
			if len(groups) != len(groupNames) {
				return errors.New("one or more group names do not exist")
			}
		}

		return tx.Model(&user).Association("Groups").Replace(groups)
	})
}

// EnsureGroups creates any of the named groups that do not exist yet
func (r *GormUserRepository) EnsureGroups(names []string) error {
	for _, name := range names {
		var group models.Group
		err := r.db.Where("name = ?", name).First(&group).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := r.db.Create(&models.Group{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}
