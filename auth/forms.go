package auth

import (
	"strings"

	"github.com/jrsteele09/fintrack-client/api"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/jrsteele09/fintrack-client/validation"
)

type LoginForm struct {
	Email    string `form:"email" validate:"email"`
	Password string `form:"password" validate:"min=8"`
}

func (f LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return validation.Struct(f, users.Messages)
}

func (f LoginForm) request() api.LoginRequest {
	return api.LoginRequest{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

type RegisterForm struct {
	Name            string `form:"name" validate:"min=2"`
	Email           string `form:"email" validate:"email"`
	Password        string `form:"password" validate:"min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"min=8,eqfield=Password"`
}

func (f RegisterForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return validation.Struct(f, users.Messages)
}

func (f RegisterForm) request() api.RegisterRequest {
	return api.RegisterRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
}
