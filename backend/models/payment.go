package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodTransfer
}

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user"`
	User          *User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PaymentDate   time.Time       `gorm:"not null;index" json:"payment_date"`
	CourseID      *uint           `gorm:"index" json:"course"`
	Course        *Course         `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	LessonID      *uint           `gorm:"index" json:"lesson"`
	Lesson        *Lesson         `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null" json:"payment_method"`
	SessionID     string          `gorm:"size:255" json:"session_id"`
	PaymentLink   string          `gorm:"size:400" json:"payment_link"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
