package user

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format for birth dates.
const DateLayout = "2006-01-02"

// Gender is one of a fixed set of values, stored lowercase.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender normalizes s and reports whether it names a known gender.
func ParseGender(s string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	return g, g.Valid()
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User represents a user account.
type User struct {
	ID                int64
	FirstName         string
	LastName          string
	Email             string
	PasswordHash      string `json:"-"`
	Gender            Gender
	BirthDate         *time.Time
	PreferredLanguage string
	PreferredCurrency string
	Address           string
	Role              string
	Department        string
	LineManager       string
	PhoneNumber       string
	RoleID            *int64
	IsVerified        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicUser is a User without credentials, safe to send to clients.
type PublicUser struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Gender            Gender    `json:"gender,omitempty"`
	BirthDate         *string   `json:"birthDate,omitempty"`
	PreferredLanguage string    `json:"preferredLanguage,omitempty"`
	PreferredCurrency string    `json:"preferredCurrency,omitempty"`
	Address           string    `json:"address,omitempty"`
	Role              string    `json:"role,omitempty"`
	Department        string    `json:"department,omitempty"`
	LineManager       string    `json:"lineManager,omitempty"`
	PhoneNumber       string    `json:"phoneNumber,omitempty"`
	RoleID            *int64    `json:"roleId,omitempty"`
	IsVerified        bool      `json:"isVerified"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Sanitized returns the client-facing projection of u.
func (u *User) Sanitized() PublicUser {
	p := PublicUser{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Gender:            u.Gender,
		PreferredLanguage: u.PreferredLanguage,
		PreferredCurrency: u.PreferredCurrency,
		Address:           u.Address,
		Role:              u.Role,
		Department:        u.Department,
		LineManager:       u.LineManager,
		PhoneNumber:       u.PhoneNumber,
		RoleID:            u.RoleID,
		IsVerified:        u.IsVerified,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if u.BirthDate != nil {
		d := u.BirthDate.Format(DateLayout)
		p.BirthDate = &d
	}
	return p
}

// ProfileUpdate holds the mutable profile fields. A nil field is left unchanged.
// Identity (id, email), credentials, role and verification state are not part of it.
type ProfileUpdate struct {
	FirstName         *string
	LastName          *string
	Gender            *Gender
	BirthDate         *time.Time
	PreferredLanguage *string
	PreferredCurrency *string
	Address           *string
	Department        *string
	LineManager       *string
	PhoneNumber       *string
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p == ProfileUpdate{}
}
