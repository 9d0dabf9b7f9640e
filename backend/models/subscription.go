package models

import "time"

type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_user_course" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_subscription_user_course" json:"course"`
	Course    *Course   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
