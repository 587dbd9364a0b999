package models

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:191;not null;uniqueIndex" json:"email"`
	Username     string     `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Firstname    string     `gorm:"size:50" json:"firstname"`
	Lastname     string     `gorm:"size:50" json:"lastname"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Active       bool       `gorm:"not null" json:"active"`
	Verified     bool       `gorm:"not null" json:"verified"`
	RoleRows     []UserRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserRole is one (user, role) membership row.
type UserRole struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`
	Role   Role  `gorm:"primaryKey;size:16"`
}

func (u *User) Roles() RoleSet {
	set := make(RoleSet, len(u.RoleRows))
	for _, row := range u.RoleRows {
		set[row.Role] = struct{}{}
	}
	return set
}

func (u *User) HasRole(r Role) bool {
	return u.Roles().Has(r)
}

// Subject is the stable key written into tokens: the email, or the username when no email is set.
func (u *User) Subject() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	Verified  bool      `json:"verified"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Phone:     u.Phone,
		Active:    u.Active,
		Verified:  u.Verified,
		Roles:     u.Roles().Slice(),
		CreatedAt: u.CreatedAt,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
	Firstname string `json:"firstname" validate:"required,min=2,max=50"`
	Lastname  string `json:"lastname" validate:"required,min=2,max=50"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Role      Role   `json:"role" validate:"required,oneof=OWNER TENANT"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}
