package amqp

import (
	"testing"
	"time"
)

func TestNotificationMessageRoundTrip(t *testing.T) {
	msg := NewNotificationMessage(EventOTP, "alice@example.com")
	msg.OTP = "123456"

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}

	back, err := NotificationMessageFromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if back.Event != EventOTP || back.Email != "alice@example.com" || back.OTP != "123456" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.Timestamp.IsZero() {
		t.Fatal("timestamp lost in round trip")
	}
}

func TestNotificationMessageFromJSONInvalid(t *testing.T) {
	if _, err := NotificationMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestNewNotificationMessageDefaults(t *testing.T) {
	before := time.Now()
	msg := NewNotificationMessage(EventWelcome, "bob@example.com")
	if msg.Timestamp.Before(before.Add(-time.Second)) {
		t.Fatalf("timestamp not set: %v", msg.Timestamp)
	}
	if msg.OTP != "" || msg.Attachment != nil {
		t.Fatalf("unexpected defaults: %+v", msg)
	}
}
