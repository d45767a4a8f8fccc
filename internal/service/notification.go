package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tripbroker/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationOfferReceived   NotificationType = "OFFER_RECEIVED"
	NotificationOfferAccepted   NotificationType = "OFFER_ACCEPTED"
	NotificationOfferRejected   NotificationType = "OFFER_REJECTED"
	NotificationTripConfirmed   NotificationType = "TRIP_CONFIRMED"
	NotificationTripReopened    NotificationType = "TRIP_REOPENED"
	NotificationTripStarted     NotificationType = "TRIP_STARTED"
	NotificationTripCompleted   NotificationType = "TRIP_COMPLETED"
	NotificationTripCancelled   NotificationType = "TRIP_CANCELLED"
	NotificationAccountFrozen   NotificationType = "ACCOUNT_FROZEN"
	NotificationAccountRestored NotificationType = "ACCOUNT_RESTORED"
	NotificationTopUpReviewed   NotificationType = "TOPUP_REVIEWED"
)

// Notification is a message handed to the delivery collaborator. Delivery,
// retries, and device tokens are its problem, not ours.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Link        string
	CreatedAt   time.Time
}

// Sender is the outbound transport for notifications.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationService builds notifications and hands them off fire-and-forget.
// Failures are logged and swallowed; no trip flow ever blocks on delivery.
type NotificationService struct {
	sender Sender
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService. sender may be nil,
// in which case notifications are logged only.
func NewNotificationService(sender Sender, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{sender: sender, logger: logger}
}

// Notify delivers a notification without surfacing failures to the caller.
func (s *NotificationService) Notify(ctx context.Context, recipientID string, typ NotificationType, title, message, link string) {
	n := Notification{
		Type:        typ,
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Link:        link,
		CreatedAt:   time.Now(),
	}

	s.logger.Info("notify",
		zap.String("type", string(typ)),
		zap.String("recipient", recipientID),
		zap.String("title", title),
	)

	if s.sender == nil {
		return
	}
	if err := s.sender.Send(ctx, n); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("type", string(typ)),
			zap.String("recipient", recipientID),
			zap.Error(err),
		)
	}
}

// NotifyOfferReceived tells the traveler a new offer arrived on their trip.
func (s *NotificationService) NotifyOfferReceived(ctx context.Context, trip *domain.Trip, offer *domain.Offer) {
	s.Notify(ctx, trip.UserID, NotificationOfferReceived,
		"New Offer",
		fmt.Sprintf("A carrier offered %.2f %s for your trip %s → %s", offer.Price, offer.Currency, trip.Origin, trip.Destination),
		"/trips/"+trip.ID+"/offers",
	)
}

// NotifyOfferAccepted tells the carrier their offer was chosen.
func (s *NotificationService) NotifyOfferAccepted(ctx context.Context, trip *domain.Trip, offer *domain.Offer) {
	s.Notify(ctx, offer.CarrierID, NotificationOfferAccepted,
		"Offer Accepted",
		fmt.Sprintf("Your offer on trip %s → %s was accepted. Confirm to lock it in.", trip.Origin, trip.Destination),
		"/trips/"+trip.ID,
	)
}

// NotifyTripConfirmed tells the traveler the carrier locked the trip in.
func (s *NotificationService) NotifyTripConfirmed(ctx context.Context, trip *domain.Trip) {
	s.Notify(ctx, trip.UserID, NotificationTripConfirmed,
		"Trip Confirmed",
		fmt.Sprintf("Your carrier confirmed the trip %s → %s.", trip.Origin, trip.Destination),
		"/trips/"+trip.ID,
	)
}

// NotifyTripReopened tells the traveler their trip is back in the offer pool.
func (s *NotificationService) NotifyTripReopened(ctx context.Context, trip *domain.Trip) {
	s.Notify(ctx, trip.UserID, NotificationTripReopened,
		"Trip Reopened",
		fmt.Sprintf("The carrier did not confirm in time; your trip %s → %s is open for offers again.", trip.Origin, trip.Destination),
		"/trips/"+trip.ID+"/offers",
	)
}

// NotifyFreeze tells a user their account was frozen or restored.
func (s *NotificationService) NotifyFreeze(ctx context.Context, userID string, action domain.AdminAction, freezeType domain.FreezeType) {
	typ := NotificationAccountFrozen
	title := "Account Restricted"
	msg := "A restriction was placed on your account."
	if action == domain.AdminActionUnfreeze {
		typ = NotificationAccountRestored
		title = "Account Restored"
		msg = "A restriction was lifted from your account."
	}
	if freezeType == domain.FreezeFinancial {
		msg += " This affects money-handling actions only."
	}
	s.Notify(ctx, userID, typ, title, msg, "/account")
}
