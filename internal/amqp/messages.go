package amqp

import (
	"encoding/json"
	"time"
)

// Event names the account lifecycle moments that trigger an email.
type Event string

const (
	EventWelcome        Event = "welcome"
	EventPasswordChange Event = "password_change"
	EventDashboardReset Event = "dashboard_reset"
	EventOTP            Event = "otp"
	EventReport         Event = "report"
)

// NotificationMessage is the payload published for every lifecycle event.
// OTP is set only for EventOTP; Attachment carries a rendered report for
// EventReport.
type NotificationMessage struct {
	Event      Event     `json:"event"`
	Email      string    `json:"email"`
	OTP        string    `json:"otp,omitempty"`
	Attachment []byte    `json:"attachment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewNotificationMessage(event Event, email string) *NotificationMessage {
	return &NotificationMessage{
		Event:     event,
		Email:     email,
		Timestamp: time.Now(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
