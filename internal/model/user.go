package model

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles in ascending order of privilege.
const (
	RoleTech            = "TECH"
	RoleReception       = "RECEPTION"
	RoleLabOwner        = "LAB_OWNER"
	RoleCustomerSupport = "CUSTOMER_SUPPORT"
	RolePartner         = "PARTNER"
	RoleSuperadmin      = "SUPERADMIN"
)

// roleLevels encodes the strict role hierarchy.
var roleLevels = map[string]int{
	RoleTech:            1,
	RoleReception:       2,
	RoleLabOwner:        3,
	RoleCustomerSupport: 4,
	RolePartner:         5,
	RoleSuperadmin:      6,
}

// Account lock policy.
const (
	MaxLoginAttempts = 5
	LockDuration     = 2 * time.Hour
)

// User represents a platform or tenant user.
type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Identifier    string         `json:"identifier" gorm:"type:varchar(64);uniqueIndex"`
	Name          string         `json:"name" gorm:"type:varchar(150);not null" validate:"required,min=2,max=150"`
	Email         *string        `json:"email,omitempty" gorm:"type:varchar(200);uniqueIndex" validate:"omitempty,email"`
	Phone         *string        `json:"phone,omitempty" gorm:"type:varchar(20);uniqueIndex" validate:"omitempty,min=8,max=20"`
	Password      string         `json:"-" gorm:"type:varchar(255)"`
	Role          string         `json:"role" gorm:"type:varchar(30);not null" validate:"required,oneof=TECH RECEPTION LAB_OWNER CUSTOMER_SUPPORT PARTNER SUPERADMIN"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	LabID         *uint          `json:"lab_id,omitempty" gorm:"index"`
	PartnerID     *uint          `json:"partner_id,omitempty" gorm:"index"`
	LoginAttempts int            `json:"-" gorm:"default:0"`
	LockUntil     *time.Time     `json:"-"`
	EmailVerified bool           `json:"email_verified" gorm:"default:false"`
	PhoneVerified bool           `json:"phone_verified" gorm:"default:false"`
	LastLoginAt   *time.Time     `json:"last_login_at,omitempty"`
	IPAddress     string         `json:"-" gorm:"type:varchar(45)"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// Validate runs struct-level validation.
func (u *User) Validate() error {
	v := validator.New()
	return v.Struct(u)
}

// RoleAtLeast reports whether the user's role is at or above the required
// role in the hierarchy.
func (u *User) RoleAtLeast(required string) bool {
	return RoleAtLeast(u.Role, required)
}

// RoleAtLeast compares two roles in the hierarchy. Unknown roles rank below
// every real role.
func RoleAtLeast(role, required string) bool {
	return roleLevels[role] >= roleLevels[required]
}

// IsLocked reports whether the account lock window is still open.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// RegisterFailedLogin advances the lock policy by one failed password
// attempt: an expired lock window resets the counter before this failure is
// counted, and the MaxLoginAttempts-th consecutive failure opens a new
// LockDuration window. Returns the column updates to persist.
func (u *User) RegisterFailedLogin(now time.Time) map[string]interface{} {
	attempts := u.LoginAttempts
	expired := u.LockUntil != nil && !u.LockUntil.After(now)
	if expired {
		attempts = 0
	}
	attempts++

	updates := map[string]interface{}{"login_attempts": attempts}
	if attempts >= MaxLoginAttempts {
		lockUntil := now.Add(LockDuration)
		updates["lock_until"] = lockUntil
		u.LockUntil = &lockUntil
	} else if expired {
		updates["lock_until"] = nil
		u.LockUntil = nil
	}
	u.LoginAttempts = attempts

	return updates
}

// CheckPassword verifies the given password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// SetPassword hashes and sets a new password.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// StaffRole reports whether the role requires a password credential.
func StaffRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}
