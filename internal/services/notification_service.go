package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pricegov/internal/models"
	"pricegov/internal/repositories"
)

// Pusher delivers a device push notification.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// NotificationService stores complaint notifications and fans them out to
// the live feed and, when configured, to FCM.
type NotificationService struct {
	NotificationRepo *repositories.NotificationRepository
	UserRepo         *repositories.UserRepository
	Live             Broadcaster
	Push             Pusher
}

func (s *NotificationService) Notify(ctx context.Context, complaintID, recipientID int64, kind, title, message string) (models.ComplaintNotification, error) {
	n, err := s.NotificationRepo.Create(ctx, models.ComplaintNotification{
		ComplaintID:      complaintID,
		RecipientID:      recipientID,
		NotificationType: kind,
		Title:            title,
		Message:          message,
		SentAt:           time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return models.ComplaintNotification{}, err
	}
	if s.Live != nil {
		s.Live.SendToUser(recipientID, models.LiveEvent{Type: models.EventNotification, Payload: n})
	}
	if s.push(ctx, n) {
		n.SentViaPush = true
	}
	return n, nil
}

// push reports whether the device push went out.
func (s *NotificationService) push(ctx context.Context, n models.ComplaintNotification) bool {
	if s.Push == nil || s.UserRepo == nil {
		return false
	}
	user, err := s.UserRepo.GetUserByID(ctx, n.RecipientID)
	if err != nil || user.FCMToken == "" {
		return false
	}
	data := map[string]string{
		"complaint_id":      strconv.FormatInt(n.ComplaintID, 10),
		"notification_type": n.NotificationType,
	}
	if err := s.Push.Send(ctx, user.FCMToken, n.Title, n.Message, data); err != nil {
		zap.L().Warn("push notification failed", zap.Error(err), zap.Int64("recipient_id", n.RecipientID))
		return false
	}
	if err := s.NotificationRepo.MarkPushed(ctx, n.ID); err != nil {
		zap.L().Warn("mark notification pushed", zap.Error(err), zap.Int64("notification_id", n.ID))
	}
	return true
}

// NotifyMany sends the same notification to several recipients; a failure
// for one recipient does not stop the rest.
func (s *NotificationService) NotifyMany(ctx context.Context, complaintID int64, recipients []int64, kind, title, message string) {
	for _, id := range recipients {
		if _, err := s.Notify(ctx, complaintID, id, kind, title, message); err != nil {
			zap.L().Error("create notification", zap.Error(err),
				zap.Int64("complaint_id", complaintID), zap.Int64("recipient_id", id))
		}
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID int64, unreadOnly bool, p models.Page) (models.ListResult[models.ComplaintNotification], error) {
	list, total, err := s.NotificationRepo.ListForRecipient(ctx, recipientID, unreadOnly, p)
	if err != nil {
		return models.ListResult[models.ComplaintNotification]{}, err
	}
	return models.NewListResult(list, total), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID int64) (models.ComplaintNotification, error) {
	return s.NotificationRepo.MarkRead(ctx, id, recipientID, time.Now().UTC().Truncate(time.Second))
}
