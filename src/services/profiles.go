package services

import (
	"context"

	"rewards/src/models"
	"rewards/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) Get(ctx context.Context, uid string) (models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", uid).
		First(&profile).
		Error
	return profile, err
}

// Upsert creates or refreshes the caller's own profile. The admin flag is
// deliberately absent from the update column list: it is toggled in the
// database directly, never through this path.
func (s *ProfileService) Upsert(ctx context.Context, uid string, email string, body *types.UpsertProfileRequestBody) (models.Profile, error) {
	profile := models.Profile{
		ID:       uid,
		Email:    email,
		FullName: body.FullName,
		Phone:    body.Phone,
		UpiID:    body.UpiID,
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "phone", "upi_id", "updated_at"}),
		}).
		Create(&profile).
		Error; err != nil {
		return models.Profile{}, err
	}
	return s.Get(ctx, uid)
}

// EnsureExists seeds a bare profile row on first login so foreign keys and
// the admin gate have something to point at.
func (s *ProfileService) EnsureExists(ctx context.Context, uid string, email string, fullName string) (models.Profile, error) {
	profile := models.Profile{
		ID:       uid,
		Email:    email,
		FullName: fullName,
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&profile).
		Error; err != nil {
		return models.Profile{}, err
	}
	return s.Get(ctx, uid)
}

func (s *ProfileService) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	var admins []models.Profile
	err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("is_admin = ?", true).
		Find(&admins).
		Error
	return admins, err
}
