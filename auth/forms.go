package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MalcoreHardcore698/authdemo/authapi"
	"github.com/MalcoreHardcore698/authdemo/form"
	"github.com/MalcoreHardcore698/authdemo/validation"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// featureForm is an onChange-mode form whose submit validates the whole
// form and then runs one controller action.
type featureForm struct {
	*form.Form
	ctrl   *Controller
	notify Notifier
}

func newFeatureForm(ctrl *Controller, n Notifier, logger *slog.Logger, defaults validation.Values, rules validation.RuleSet) (featureForm, error) {
	f, err := form.New(form.Options{
		Mode:          form.ModeOnChange,
		DefaultValues: defaults,
		Rules:         rules,
		Logger:        logger,
	})
	if err != nil {
		return featureForm{}, err
	}
	return featureForm{Form: f, ctrl: ctrl, notify: n}, nil
}

func (f featureForm) str(name string) string {
	s, _ := f.Value(name).(string)
	return s
}

// run validates and, if valid, calls action. Action failures go to the
// notifier and are returned; superseded actions are returned silently.
func (f featureForm) run(ctx context.Context, action func() error) error {
	if !f.Trigger(ctx) {
		return ErrInvalidForm
	}
	if err := action(); err != nil {
		if f.notify != nil && !errors.Is(err, ErrSuperseded) {
			f.notify.Error(Message(err))
		}
		return err
	}
	return nil
}

// LoginForm is the email/password sign-in form.
type LoginForm struct{ featureForm }

// NewLoginForm returns an empty login form bound to ctrl.
func NewLoginForm(ctrl *Controller, n Notifier, logger *slog.Logger) (*LoginForm, error) {
	ff, err := newFeatureForm(ctrl, n, logger, validation.Values{"email": "", "password": ""}, LoginRules())
	if err != nil {
		return nil, err
	}
	return &LoginForm{ff}, nil
}

// Submit signs in with the form's values.
func (f *LoginForm) Submit(ctx context.Context) error {
	return f.run(ctx, func() error {
		return f.ctrl.Login(ctx, authapi.LoginRequest{Email: f.str("email"), Password: f.str("password")})
	})
}

// RegisterForm is the sign-up form.
type RegisterForm struct{ featureForm }

// NewRegisterForm returns an empty registration form bound to ctrl.
func NewRegisterForm(ctrl *Controller, n Notifier, logger *slog.Logger) (*RegisterForm, error) {
	ff, err := newFeatureForm(ctrl, n, logger, validation.Values{"name": "", "email": "", "password": ""}, RegisterRules())
	if err != nil {
		return nil, err
	}
	return &RegisterForm{ff}, nil
}

// Submit registers with the form's values.
func (f *RegisterForm) Submit(ctx context.Context) error {
	return f.run(ctx, func() error {
		return f.ctrl.Register(ctx, authapi.RegisterRequest{
			Name:     f.str("name"),
			Email:    f.str("email"),
			Password: f.str("password"),
		})
	})
}

// ForgotPasswordForm requests a password reset email.
type ForgotPasswordForm struct{ featureForm }

// NewForgotPasswordForm returns an empty forgot-password form bound to ctrl.
func NewForgotPasswordForm(ctrl *Controller, n Notifier, logger *slog.Logger) (*ForgotPasswordForm, error) {
	ff, err := newFeatureForm(ctrl, n, logger, validation.Values{"email": ""}, ForgotPasswordRules())
	if err != nil {
		return nil, err
	}
	return &ForgotPasswordForm{ff}, nil
}

// Submit requests the reset and reports the backend's message as a success
// notification.
func (f *ForgotPasswordForm) Submit(ctx context.Context) error {
	return f.run(ctx, func() error {
		resp, err := f.ctrl.ResetPassword(ctx, authapi.ResetPasswordRequest{Email: f.str("email")})
		if err != nil {
			return err
		}
		if f.notify != nil {
			f.notify.Success(resp.Message)
		}
		return nil
	})
}
