package auth

import (
	"context"

	"expenseflow/internal/core"
	"expenseflow/internal/notify"
)

// NotifyingVerifier decorates a Verifier with lifecycle notifications:
// welcome mail on registration, confirmation on password changes, and the
// passcode mail that carries an issued OTP. Dispatch failures never fail
// the credential operation itself.
type NotifyingVerifier struct {
	inner      Verifier
	dispatcher notify.Dispatcher
}

func NewNotifyingVerifier(inner Verifier, dispatcher notify.Dispatcher) *NotifyingVerifier {
	return &NotifyingVerifier{inner: inner, dispatcher: dispatcher}
}

func (n *NotifyingVerifier) Register(ctx context.Context, email, password string) error {
	if err := n.inner.Register(ctx, email, password); err != nil {
		return err
	}
	n.dispatcher.Welcome(ctx, email)
	return nil
}

func (n *NotifyingVerifier) Verify(ctx context.Context, email, password string) (*core.User, error) {
	return n.inner.Verify(ctx, email, password)
}

func (n *NotifyingVerifier) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if err := n.inner.ChangePassword(ctx, email, oldPassword, newPassword); err != nil {
		return err
	}
	n.dispatcher.PasswordChanged(ctx, email)
	return nil
}

func (n *NotifyingVerifier) IssueOTP(ctx context.Context, email string) (string, error) {
	code, err := n.inner.IssueOTP(ctx, email)
	if err != nil {
		return "", err
	}
	n.dispatcher.OTP(ctx, email, code)
	return code, nil
}

func (n *NotifyingVerifier) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if err := n.inner.ResetPassword(ctx, email, otp, newPassword); err != nil {
		return err
	}
	n.dispatcher.PasswordChanged(ctx, email)
	return nil
}
