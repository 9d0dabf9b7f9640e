package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"size:100;not null" json:"title"`
	Description   string         `json:"description"`
	Image         string         `json:"image"`
	OwnerID       *uint          `gorm:"index" json:"owner"`
	Owner         *User          `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Lessons       []Lesson       `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Subscriptions []Subscription `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Lesson struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	VideoLink   string    `gorm:"size:250" json:"video_link"`
	CourseID    uint      `gorm:"not null;index" json:"course"`
	OwnerID     *uint     `gorm:"index" json:"owner"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeDelete removes the course's lessons and subscriptions and detaches
// payments, so the cascade holds on databases without foreign key enforcement.
func (c *Course) BeforeDelete(tx *gorm.DB) error {
	if c.ID == 0 {
		return nil
	}

	lessonIDs := tx.Model(&Lesson{}).Select("id").Where("course_id = ?", c.ID)
	if err := tx.Model(&Payment{}).
		Where("lesson_id IN (?)", lessonIDs).
		Update("lesson_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Model(&Payment{}).
		Where("course_id = ?", c.ID).
		Update("course_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("course_id = ?", c.ID).Delete(&Subscription{}).Error; err != nil {
		return err
	}
	return tx.Where("course_id = ?", c.ID).Delete(&Lesson{}).Error
}

// BeforeDelete detaches payments that reference the lesson.
func (l *Lesson) BeforeDelete(tx *gorm.DB) error {
	if l.ID == 0 {
		return nil
	}
	return tx.Model(&Payment{}).
		Where("lesson_id = ?", l.ID).
		Update("lesson_id", nil).Error
}

// IsOwnedBy reports whether userID is the recorded owner.
func (c *Course) IsOwnedBy(userID uint) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

func (l *Lesson) IsOwnedBy(userID uint) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}
