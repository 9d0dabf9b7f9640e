package jobs

import (
	"context"
	"fmt"

	"lms/backend/mail"
)

// SendCourseUpdateEmail tells one subscriber that the course materials changed.
func SendCourseUpdateEmail(ctx context.Context, mailer mail.Mailer, email, courseTitle string) error {
	return mailer.Send(ctx, mail.Message{
		To:      email,
		Subject: fmt.Sprintf("Обновление курса: %s", courseTitle),
		Body:    fmt.Sprintf("Материалы курса \"%s\" были обновлены!", courseTitle),
	})
}

// NotifySubscribers enqueues one update email per address and returns how
// many were accepted.
func NotifySubscribers(q *Queue, mailer mail.Mailer, courseTitle string, emails []string) int {
	queued := 0
	for _, email := range emails {
		email := email
		ok := q.Enqueue("course-update:"+email, func(ctx context.Context) error {
			return SendCourseUpdateEmail(ctx, mailer, email, courseTitle)
		})
		if ok {
			queued++
		}
	}
	return queued
}
