package user

// SignupRequest represents the request payload for creating a new account.
type SignupRequest struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
	Email     string `validate:"required,email,max=191"`
	Password  string `validate:"required,max=72"` // bcrypt ignores bytes past 72
}

// SigninRequest represents the login credentials.
type SigninRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// UpdateProfileRequest represents a profile update for the user identified by ID and Email.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	ID                int64   `validate:"required,gt=0"`
	Email             string  `validate:"required,email"`
	FirstName         *string `validate:"omitempty,max=100"`
	LastName          *string `validate:"omitempty,max=100"`
	Gender            *string
	BirthDate         *string `validate:"omitempty,datetime=2006-01-02"`
	PreferredLanguage *string `validate:"omitempty,max=50"`
	PreferredCurrency *string `validate:"omitempty,max=10"`
	Address           *string
	Department        *string
	LineManager       *string
	PhoneNumber       *string
}
