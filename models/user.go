package models

import "time"

// Closed role set. Every authenticated request resolves to exactly one of these.
const (
	RoleAdmin   = "admin"
	RoleJudge   = "judge"
	RoleTrainee = "trainee"
)

// User is the authentication identity. Club-profile data lives on Trainee;
// judges and admins are plain users with the matching role.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role" gorm:"type:varchar(16);not null;default:'trainee'"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// FullName falls back to the username when no name was provided.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
