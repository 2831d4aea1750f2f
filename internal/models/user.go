package models

import (
	"strings"
	"time"
)

// User represents a registered account. Tasks holds the ids of the tasks the
// user owns in the order they were added.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,max=255,emailaddr"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null" validate:"required"` // bcrypt hash, never plaintext once stored
	Tasks     []string  `json:"tasks" gorm:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize applies the schema's trimming and lowercasing rules.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// UserTask is one entry in a user's task list.
type UserTask struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)"`
	TaskID    string    `gorm:"primaryKey;type:varchar(36);index"`
	CreatedAt time.Time `gorm:"index"`
}
