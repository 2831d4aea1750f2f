package models

import "time"

// Task is a personal to-do item. UserID is set once at creation and never changes.
type Task struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title     string    `json:"title" gorm:"type:text;not null" validate:"required"`
	Desc      string    `json:"desc" gorm:"column:description;type:text"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index" validate:"required,uuid"`
	Important bool      `json:"important" gorm:"not null;default:false"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskFlag selects a subset of a user's tasks.
type TaskFlag string

const (
	FlagImportant  TaskFlag = "important"
	FlagCompleted  TaskFlag = "completed"
	FlagIncomplete TaskFlag = "incomplete"
)

// Valid reports whether f is one of the known flags.
func (f TaskFlag) Valid() bool {
	switch f {
	case FlagImportant, FlagCompleted, FlagIncomplete:
		return true
	}
	return false
}

// Matches reports whether t satisfies the flag predicate.
func (f TaskFlag) Matches(t Task) bool {
	switch f {
	case FlagImportant:
		return t.Important
	case FlagCompleted:
		return t.Completed
	case FlagIncomplete:
		return !t.Completed
	}
	return false
}

// TaskEvent is the message published when a task is created, updated or deleted.
type TaskEvent struct {
	Type       string    `json:"type"` // e.g., "task.created", "task.updated", "task.deleted"
	TaskID     string    `json:"taskId"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title,omitempty"`
	Important  bool      `json:"important"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurredAt"`
}
