package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"user-account-service/internal/domain/user"
)

// RoleSchema represents the database schema for the roles table.
type RoleSchema struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null;uniqueIndex;size:50"`
}

// TableName specifies the table name for the RoleSchema model.
func (RoleSchema) TableName() string {
	return "roles"
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	FirstName         string          `gorm:"not null;size:100"`
	LastName          string          `gorm:"not null;size:100"`
	Email             string          `gorm:"not null;uniqueIndex;size:191"`
	Password          string          `gorm:"not null"`
	Gender            *string         `gorm:"size:10"`
	BirthDate         *datatypes.Date `gorm:"type:date"`
	PreferredLanguage string          `gorm:"size:50"`
	PreferredCurrency string          `gorm:"size:10"`
	Address           string          `gorm:"type:text"`
	Role              string          `gorm:"size:50"`
	Department        string          `gorm:"size:100"`
	LineManager       string          `gorm:"size:100"`
	PhoneNumber       string          `gorm:"size:20"`
	RoleID            *int64          `gorm:"index"`
	RoleRecord        *RoleSchema     `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	IsVerified        bool            `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the schema and seeds the default roles.
// Safe to run on every start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&RoleSchema{}, &UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	for _, name := range user.DefaultRoles {
		role := RoleSchema{Name: name}
		if err := db.WithContext(ctx).Where(RoleSchema{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %q: %w", name, err)
		}
	}
	return nil
}

func toSchema(u *user.User) UserSchema {
	model := UserSchema{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Password:          u.PasswordHash,
		PreferredLanguage: u.PreferredLanguage,
		PreferredCurrency: u.PreferredCurrency,
		Address:           u.Address,
		Role:              u.Role,
		Department:        u.Department,
		LineManager:       u.LineManager,
		PhoneNumber:       u.PhoneNumber,
		RoleID:            u.RoleID,
		IsVerified:        u.IsVerified,
	}
	if u.Gender != "" {
		g := string(u.Gender)
		model.Gender = &g
	}
	if u.BirthDate != nil {
		d := datatypes.Date(*u.BirthDate)
		model.BirthDate = &d
	}
	return model
}

func toDomain(model *UserSchema) *user.User {
	u := &user.User{
		ID:                model.ID,
		FirstName:         model.FirstName,
		LastName:          model.LastName,
		Email:             model.Email,
		PasswordHash:      model.Password,
		PreferredLanguage: model.PreferredLanguage,
		PreferredCurrency: model.PreferredCurrency,
		Address:           model.Address,
		Role:              model.Role,
		Department:        model.Department,
		LineManager:       model.LineManager,
		PhoneNumber:       model.PhoneNumber,
		RoleID:            model.RoleID,
		IsVerified:        model.IsVerified,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	if model.Gender != nil {
		u.Gender = user.Gender(*model.Gender)
	}
	if model.BirthDate != nil {
		t := time.Time(*model.BirthDate)
		u.BirthDate = &t
	}
	return u
}

// profileColumns maps the set fields of p to column updates.
func profileColumns(p user.ProfileUpdate) map[string]any {
	updates := make(map[string]any)
	if p.FirstName != nil {
		updates["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		updates["last_name"] = *p.LastName
	}
	if p.Gender != nil {
		updates["gender"] = string(*p.Gender)
	}
	if p.BirthDate != nil {
		updates["birth_date"] = datatypes.Date(*p.BirthDate)
	}
	if p.PreferredLanguage != nil {
		updates["preferred_language"] = *p.PreferredLanguage
	}
	if p.PreferredCurrency != nil {
		updates["preferred_currency"] = *p.PreferredCurrency
	}
	if p.Address != nil {
		updates["address"] = *p.Address
	}
	if p.Department != nil {
		updates["department"] = *p.Department
	}
	if p.LineManager != nil {
		updates["line_manager"] = *p.LineManager
	}
	if p.PhoneNumber != nil {
		updates["phone_number"] = *p.PhoneNumber
	}
	return updates
}
