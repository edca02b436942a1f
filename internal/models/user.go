package models

import (
	"strings"
	"time"

	"github.com/SammyBolger/NBA-Analytics/pkg/database"
)

// User is a dashboard account. Passwords are stored as bcrypt hashes.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeEmail lowercases and trims an email before lookup or insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserByEmail fetches user by normalized email
func GetUserByEmail(db *database.DB, email string) (*User, error) {
	var user User
	err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	return &user, err
}

// GetUserByUsername fetches user by username
func GetUserByUsername(db *database.DB, username string) (*User, error) {
	var user User
	err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	return &user, err
}

// GetUserByID fetches user by ID
func GetUserByID(db *database.DB, userID uint) (*User, error) {
	var user User
	err := db.Where("id = ?", userID).First(&user).Error
	return &user, err
}

// CreateUser inserts a new account with an already hashed password
func CreateUser(db *database.DB, username, email, passwordHash string) (*User, error) {
	user := &User{
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
	}

	err := db.Create(user).Error
	return user, err
}
