package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jrsteele09/fintrack-client/validation"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           string    `json:"id"`                 // Unique identifier for the user
	Email        string    `json:"email"`              // User's email address
	Name         string    `json:"name"`               // Display name
	GoogleID     string    `json:"googleId,omitempty"` // Set when the account was created through Google sign-in
	PasswordHash string    `json:"-"`                  // Hashed version of the user's password - never serialize
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the editable part of a user. Empty fields are left unchanged.
type Profile struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Name  string `json:"name,omitempty" validate:"omitempty,min=2"`
}

const (
	MinPasswordLength = 8
	MinNameLength     = 2
)

// Messages are the field errors shown by the account forms
var Messages = validation.Messages{
	"name":                    fmt.Sprintf("Name must be at least %d characters", MinNameLength),
	"email":                   "Invalid email address",
	"password":                fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
	"confirmPassword.eqfield": "Passwords don't match",
	"confirmPassword":         fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
}

// Validate checks the fields that are set. Callers trim them first.
func (p Profile) Validate() error {
	return validation.Struct(p, Messages)
}

// Clone returns a copy that can be handed out without sharing the original
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName falls back to the email when no name is set
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// Apply copies the non-empty profile fields onto the user
func (u *User) Apply(p Profile) {
	if p.Email != "" {
		u.Email = p.Email
	}
	if p.Name != "" {
		u.Name = p.Name
	}
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
