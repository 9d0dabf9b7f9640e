package models

import (
	"time"

	"gorm.io/gorm"
)

// ModeratorGroup is the group whose members may read and update any course or lesson.
const ModeratorGroup = "Moderator"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:254;unique;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Phone        string     `gorm:"size:35" json:"phone"`
	City         string     `gorm:"size:50" json:"city"`
	Avatar       string     `json:"avatar"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	Groups       []Group    `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:150;unique;not null" json:"name"`
}

// GroupNames returns the names of the groups the user belongs to.
// Groups must be preloaded.
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

// BeforeDelete removes the user's subscriptions and payments and releases
// ownership of their courses and lessons.
func (u *User) BeforeDelete(tx *gorm.DB) error {
	if u.ID == 0 {
		return nil
	}
	if err := tx.Where("user_id = ?", u.ID).Delete(&Subscription{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", u.ID).Delete(&Payment{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&Course{}).Where("owner_id = ?", u.ID).Update("owner_id", nil).Error; err != nil {
		return err
	}
	return tx.Model(&Lesson{}).Where("owner_id = ?", u.ID).Update("owner_id", nil).Error
}
