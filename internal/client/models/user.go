package models

import "strings"

// UserType distinguishes tradespeople from job posters.
type UserType string

const (
	UserTypeWorker UserType = "worker"
	UserTypeClient UserType = "client"
)

// Credential is the single stored authentication token.
type Credential struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// User is the denormalized profile snapshot cached after login and every
// successful session validation.
type User struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	UserType  UserType `json:"user_type"`
	Phone     string   `json:"phone,omitempty"`

	// worker-only
	Skills     []string `json:"skills,omitempty"`
	HourlyRate float64  `json:"hourly_rate,omitempty"`
	Rating     float64  `json:"rating,omitempty"`

	// client-only
	CompanyName string `json:"company_name,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsWorker() bool { return u.UserType == UserTypeWorker }

func (u *User) Validate() error {
	if u == nil {
		return invalid("user is missing")
	}
	if u.ID <= 0 {
		return invalid("user id %d", u.ID)
	}
	if u.Email == "" {
		return invalid("user %d has no email", u.ID)
	}
	switch u.UserType {
	case UserTypeWorker, UserTypeClient:
	default:
		return invalid("user %d has unknown type %q", u.ID, u.UserType)
	}
	return nil
}

// LoginRequest is the body of POST /auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register/.
type RegisterRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	UserType    UserType `json:"user_type"`
	Phone       string   `json:"phone,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (r *AuthResponse) Validate() error {
	if r.Token == "" {
		return invalid("auth response without token")
	}
	return r.User.Validate()
}

// Credential extracts what the credential store keeps.
func (r *AuthResponse) Credential() Credential {
	return Credential{Token: r.Token, UserID: r.User.ID}
}

// WorkerProfile is the editable worker-facing profile.
type WorkerProfile struct {
	UserID      int64    `json:"user_id"`
	Bio         string   `json:"bio"`
	Skills      []string `json:"skills"`
	HourlyRate  float64  `json:"hourly_rate"`
	Rating      float64  `json:"rating"`
	Location    string   `json:"location"`
	IsAvailable bool     `json:"is_available"`
}

func (p *WorkerProfile) Validate() error {
	if p.UserID <= 0 {
		return invalid("worker profile user id %d", p.UserID)
	}
	if p.HourlyRate < 0 {
		return invalid("worker profile negative hourly rate")
	}
	return nil
}
