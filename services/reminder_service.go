package services

import (
	"context"
	"time"

	"argocrm/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reminder thresholds. A pending quote is stale when neither the quote nor
// any of its follow-ups has been touched within the window.
const (
	staleQuoteWindow    = 7 * 24 * time.Hour
	deliveryAlertWindow = 14 * 24 * time.Hour
)

// ReminderService runs the scheduled follow-up and delivery reminders.
// Either channel may be nil; the job sends on whichever is configured.
type ReminderService struct {
	db    *gorm.DB
	email *EmailService
	fcm   *FCMService
}

func NewReminderService(db *gorm.DB, email *EmailService, fcm *FCMService) *ReminderService {
	return &ReminderService{db: db, email: email, fcm: fcm}
}

// staleQuotes finds pending quotes whose latest activity (quote update or
// follow-up) is older than the window.
func (r *ReminderService) staleQuotes() ([]models.QuoteGorm, error) {
	cutoff := time.Now().Add(-staleQuoteWindow)

	var quotes []models.QuoteGorm
	err := r.db.Preload("Client").Preload("SalesPerson").
		Where("outcome = ?", models.QuoteOutcomePending).
		Where("updated_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM follow_ups WHERE follow_ups.quote_id = quotes.id AND follow_ups.created_at >= ?)", cutoff).
		Find(&quotes).Error
	return quotes, err
}

// upcomingDeliveries finds won quotes whose delivery date falls within the
// alert window.
func (r *ReminderService) upcomingDeliveries() ([]models.QuoteGorm, error) {
	now := time.Now()
	var quotes []models.QuoteGorm
	err := r.db.Preload("Client").Preload("SalesPerson").
		Where("outcome = ?", models.QuoteOutcomeWon).
		Where("delivery_date IS NOT NULL AND delivery_date >= ? AND delivery_date <= ?", now, now.Add(deliveryAlertWindow)).
		Find(&quotes).Error
	return quotes, err
}

// Run executes one reminder pass. Send failures are logged and skipped so a
// bad address never blocks the rest of the batch.
func (r *ReminderService) Run(ctx context.Context) {
	stale, err := r.staleQuotes()
	if err != nil {
		logrus.Errorf("reminder: failed to query stale quotes: %v", err)
	} else {
		days := int(staleQuoteWindow.Hours() / 24)
		for _, quote := range stale {
			r.notify(ctx, quote,
				"Follow-up due: "+quote.ReferenceNumber,
				func() error { return r.email.SendQuoteFollowUpReminder(quote, days) })
		}
		if len(stale) > 0 {
			logrus.Infof("reminder: %d stale quotes flagged", len(stale))
		}
	}

	due, err := r.upcomingDeliveries()
	if err != nil {
		logrus.Errorf("reminder: failed to query upcoming deliveries: %v", err)
		return
	}
	for _, quote := range due {
		r.notify(ctx, quote,
			"Delivery approaching: "+quote.ReferenceNumber,
			func() error { return r.email.SendDeliveryReminder(quote) })
	}
	if len(due) > 0 {
		logrus.Infof("reminder: %d deliveries approaching", len(due))
	}
}

func (r *ReminderService) notify(ctx context.Context, quote models.QuoteGorm, title string, sendMail func() error) {
	if r.email != nil {
		if err := sendMail(); err != nil {
			logrus.Warnf("reminder: email for %s failed: %v", quote.ReferenceNumber, err)
		}
	}
	if r.fcm != nil && quote.SalesPersonID != nil {
		// Device tokens are keyed by user id; sales people provisioned as
		// users share the id space.
		err := r.fcm.SendNotificationToUser(ctx, int(*quote.SalesPersonID), title, quote.ReferenceNumber, map[string]string{
			"action": "/quotes/" + quote.ReferenceNumber,
		})
		if err != nil {
			logrus.Warnf("reminder: push for %s failed: %v", quote.ReferenceNumber, err)
		}
	}
}
