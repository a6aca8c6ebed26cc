// Package notify dispatches fire-and-forget account lifecycle emails.
// Publish failures are logged and swallowed: a missed email never breaks
// the user-visible flow that triggered it.
package notify

import (
	"context"
	"log/slog"

	"expenseflow/internal/amqp"
)

// Dispatcher publishes lifecycle events for the mail worker to deliver.
type Dispatcher interface {
	Welcome(ctx context.Context, email string)
	PasswordChanged(ctx context.Context, email string)
	DashboardReset(ctx context.Context, email string)
	OTP(ctx context.Context, email, code string)
	Report(ctx context.Context, email string, attachment []byte)
}

// publisher is the narrow slice of the AMQP client the dispatcher needs.
type publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// AMQPDispatcher publishes events to the notification queue. A nil client
// turns every dispatch into a logged no-op, mirroring how the rest of the
// system degrades when the broker is not configured.
type AMQPDispatcher struct {
	client publisher
}

func NewAMQPDispatcher(client *amqp.Client) *AMQPDispatcher {
	if client == nil {
		return &AMQPDispatcher{}
	}
	return &AMQPDispatcher{client: client}
}

func (d *AMQPDispatcher) Welcome(ctx context.Context, email string) {
	d.publish(ctx, amqp.NewNotificationMessage(amqp.EventWelcome, email))
}

func (d *AMQPDispatcher) PasswordChanged(ctx context.Context, email string) {
	d.publish(ctx, amqp.NewNotificationMessage(amqp.EventPasswordChange, email))
}

func (d *AMQPDispatcher) DashboardReset(ctx context.Context, email string) {
	d.publish(ctx, amqp.NewNotificationMessage(amqp.EventDashboardReset, email))
}

func (d *AMQPDispatcher) OTP(ctx context.Context, email, code string) {
	msg := amqp.NewNotificationMessage(amqp.EventOTP, email)
	msg.OTP = code
	d.publish(ctx, msg)
}

func (d *AMQPDispatcher) Report(ctx context.Context, email string, attachment []byte) {
	msg := amqp.NewNotificationMessage(amqp.EventReport, email)
	msg.Attachment = attachment
	d.publish(ctx, msg)
}

func (d *AMQPDispatcher) publish(ctx context.Context, msg *amqp.NotificationMessage) {
	if d.client == nil {
		slog.DebugContext(ctx, "Notification dispatcher disabled, dropping event",
			"event", msg.Event, "email", msg.Email)
		return
	}
	if err := d.client.PublishNotification(ctx, msg); err != nil {
		// Fire and forget: log the cause, never propagate.
		slog.ErrorContext(ctx, "Failed to publish notification",
			"event", msg.Event, "email", msg.Email, "error", err)
	}
}
