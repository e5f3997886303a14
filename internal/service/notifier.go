package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"youngscholars/internal/models"
)

// NotificationKind identifies what a notification celebrates
type NotificationKind string

const (
	KindBadgeEarned NotificationKind = "badge_earned"
	KindLevelUp     NotificationKind = "level_up"
)

// Notification is a human readable message about a learner's progress
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}

// Notifier delivers progress notifications
type Notifier interface {
	Notify(ctx context.Context, learner *models.Learner, n Notification) error
}

// BadgeNotification builds the message for a newly earned badge
func BadgeNotification(badge models.Badge) Notification {
	return Notification{
		Kind:    KindBadgeEarned,
		Title:   "🎉 Badge Earned!",
		Message: fmt.Sprintf("%s: %s", badge.Title, badge.Description),
	}
}

// LevelUpNotification builds the message for a reading level change
func LevelUpNotification(learner *models.Learner, levelLabel string) Notification {
	return Notification{
		Kind:    KindLevelUp,
		Title:   "🌟 Level Up!",
		Message: fmt.Sprintf("%s, you are now at the %s level!", learner.FirstName, levelLabel),
	}
}

// LogNotifier writes notifications to the standard logger
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, learner *models.Learner, n Notification) error {
	log.Printf("Notification for learner %d (%s): %s %s", learner.ID, n.Kind, n.Title, n.Message)
	return nil
}

// ParentLookup finds the parent account a learner belongs to
type ParentLookup interface {
	GetParentByID(ctx context.Context, id int64) (*models.Parent, error)
}

// NotificationMailer sends a notification email
type NotificationMailer interface {
	SendNotificationEmail(ctx context.Context, toEmail, toName, subject, message string) error
}

// EmailNotifier emails notifications to the learner's parent
type EmailNotifier struct {
	parents ParentLookup
	mailer  NotificationMailer
}

// NewEmailNotifier creates a notifier that emails parents
func NewEmailNotifier(parents ParentLookup, mailer NotificationMailer) *EmailNotifier {
	return &EmailNotifier{parents: parents, mailer: mailer}
}

func (e *EmailNotifier) Notify(ctx context.Context, learner *models.Learner, n Notification) error {
	parent, err := e.parents.GetParentByID(ctx, learner.ParentID)
	if err != nil {
		return fmt.Errorf("failed to look up parent: %w", err)
	}
	if parent == nil {
		return fmt.Errorf("parent %d not found for learner %d", learner.ParentID, learner.ID)
	}

	subject := fmt.Sprintf("%s %s", learner.FirstName, n.Title)
	return e.mailer.SendNotificationEmail(ctx, parent.Email, parent.FirstName, subject, n.Message)
}

// MultiNotifier delivers to every notifier and joins their errors
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, learner *models.Learner, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, learner, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
