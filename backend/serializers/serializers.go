package serializers

import (
	"context"
	"time"

	"lms/backend/models"

	"gorm.io/gorm"
)

type LessonResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	VideoLink   string    `json:"video_link"`
	Course      uint      `json:"course"`
	Owner       *uint     `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CourseResponse is the course representation with its lessons, the lesson
// count and whether the requesting user is subscribed.
type CourseResponse struct {
	ID           uint             `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Image        string           `json:"image"`
	Owner        *uint            `json:"owner"`
	LessonsCount int              `json:"lessons_count"`
	Lessons      []LessonResponse `json:"lessons"`
	IsSubscribed bool             `json:"is_subscribed"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type PaymentResponse struct {
	ID            uint                 `json:"id"`
	User          uint                 `json:"user"`
	PaymentDate   time.Time            `json:"payment_date"`
	Course        *uint                `json:"course"`
	Lesson        *uint                `json:"lesson"`
	Amount        string               `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	SessionID     string               `json:"session_id"`
	PaymentLink   string               `json:"payment_link"`
}

type UserResponse struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	City      string     `json:"city"`
	Avatar    string     `json:"avatar"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	Groups    []string   `json:"groups"`
}

type SubscriptionResponse struct {
	ID        uint      `json:"id"`
	User      uint      `json:"user"`
	Course    uint      `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

func Lesson(l *models.Lesson) LessonResponse {
	return LessonResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		VideoLink:   l.VideoLink,
		Course:      l.CourseID,
		Owner:       l.OwnerID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func Lessons(lessons []models.Lesson) []LessonResponse {
	out := make([]LessonResponse, 0, len(lessons))
	for i := range lessons {
		out = append(out, Lesson(&lessons[i]))
	}
	return out
}

func Payment(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		User:          p.UserID,
		PaymentDate:   p.PaymentDate,
		Course:        p.CourseID,
		Lesson:        p.LessonID,
		Amount:        p.Amount.StringFixed(2),
		PaymentMethod: p.PaymentMethod,
		SessionID:     p.SessionID,
		PaymentLink:   p.PaymentLink,
	}
}

func Payments(payments []models.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, Payment(&payments[i]))
	}
	return out
}

func User(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Phone:     u.Phone,
		City:      u.City,
		Avatar:    u.Avatar,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		Groups:    u.GroupNames(),
	}
}

func Users(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, User(&users[i]))
	}
	return out
}

func Subscriptions(subs []models.Subscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, SubscriptionResponse{ID: s.ID, User: s.UserID, Course: s.CourseID, CreatedAt: s.CreatedAt})
	}
	return out
}

// Courses renders courses for userID, loading lessons and subscriptions
// in two queries regardless of how many courses are passed.
func Courses(ctx context.Context, db *gorm.DB, userID uint, courses []models.Course) ([]CourseResponse, error) {
	out := make([]CourseResponse, 0, len(courses))
	if len(courses) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	var lessons []models.Lesson
	if err := db.WithContext(ctx).Where("course_id IN ?", ids).Order("id").Find(&lessons).Error; err != nil {
		return nil, err
	}
	byCourse := make(map[uint][]models.Lesson, len(courses))
	for _, l := range lessons {
		byCourse[l.CourseID] = append(byCourse[l.CourseID], l)
	}

	var subscribed []uint
	if err := db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND course_id IN ?", userID, ids).
		Pluck("course_id", &subscribed).Error; err != nil {
		return nil, err
	}
	isSubscribed := make(map[uint]bool, len(subscribed))
	for _, id := range subscribed {
		isSubscribed[id] = true
	}

	for i := range courses {
		c := &courses[i]
		courseLessons := byCourse[c.ID]
		out = append(out, CourseResponse{
			ID:           c.ID,
			Title:        c.Title,
			Description:  c.Description,
			Image:        c.Image,
			Owner:        c.OwnerID,
			LessonsCount: len(courseLessons),
			Lessons:      Lessons(courseLessons),
			IsSubscribed: isSubscribed[c.ID],
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return out, nil
}

// Course renders a single course for userID.
func Course(ctx context.Context, db *gorm.DB, userID uint, course *models.Course) (CourseResponse, error) {
	out, err := Courses(ctx, db, userID, []models.Course{*course})
	if err != nil {
		return CourseResponse{}, err
	}
	return out[0], nil
}
