package repository

import (
	"context"

	"github.com/sjperalta/bitacora-api/internal/models"
	"gorm.io/gorm"
)

// MembershipRepository resolves which organization a user acts for
type MembershipRepository interface {
	FindByUser(ctx context.Context, userID uint) (*models.OrganizationMember, error)
	FindAdmins(ctx context.Context, organizationID uint) ([]models.User, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) FindByUser(ctx context.Context, userID uint) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := conn(ctx, r.db).
		Preload("User").
		Where("user_id = ?", userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *membershipRepository) FindAdmins(ctx context.Context, organizationID uint) ([]models.User, error) {
	var users []models.User
	err := conn(ctx, r.db).
		Joins("JOIN organization_members ON organization_members.user_id = users.id").
		Where("organization_members.organization_id = ? AND organization_members.role = ?", organizationID, models.MemberRoleAdmin).
		Order("users.id").
		Find(&users).Error
	return users, err
}
