package notify

import (
	"context"
	"errors"
	"testing"

	"expenseflow/internal/amqp"
)

type fakePublisher struct {
	published []*amqp.NotificationMessage
	err       error
}

func (f *fakePublisher) PublishNotification(_ context.Context, msg *amqp.NotificationMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func TestDispatcherEvents(t *testing.T) {
	fake := &fakePublisher{}
	d := &AMQPDispatcher{client: fake}
	ctx := context.Background()

	d.Welcome(ctx, "a@example.com")
	d.PasswordChanged(ctx, "a@example.com")
	d.DashboardReset(ctx, "a@example.com")
	d.OTP(ctx, "a@example.com", "123456")
	d.Report(ctx, "a@example.com", []byte("csv"))

	want := []amqp.Event{
		amqp.EventWelcome,
		amqp.EventPasswordChange,
		amqp.EventDashboardReset,
		amqp.EventOTP,
		amqp.EventReport,
	}
	if len(fake.published) != len(want) {
		t.Fatalf("published %d messages, want %d", len(fake.published), len(want))
	}
	for i, ev := range want {
		if fake.published[i].Event != ev {
			t.Fatalf("message %d: got %s want %s", i, fake.published[i].Event, ev)
		}
	}
	if fake.published[3].OTP != "123456" {
		t.Fatalf("otp not carried: %+v", fake.published[3])
	}
	if string(fake.published[4].Attachment) != "csv" {
		t.Fatalf("attachment not carried: %+v", fake.published[4])
	}
}

func TestDispatcherSwallowsPublishErrors(t *testing.T) {
	d := &AMQPDispatcher{client: &fakePublisher{err: errors.New("broker down")}}

	// Must not panic or propagate; the caller flow never sees the failure.
	d.Welcome(context.Background(), "a@example.com")
}

func TestDispatcherNilClient(t *testing.T) {
	d := NewAMQPDispatcher(nil)
	d.Welcome(context.Background(), "a@example.com")
	d.Report(context.Background(), "a@example.com", nil)
}
