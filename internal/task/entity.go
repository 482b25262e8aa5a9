package task

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusInWork     Status = "IN_WORK"
	StatusOnRevision Status = "ON_REVISION"
	StatusDone       Status = "DONE"
)

// EditableStatuses are the statuses a user may move a task into from
// the status-edit dialog.
var EditableStatuses = []Status{StatusInWork, StatusOnRevision, StatusDone}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusCreated, StatusInWork, StatusOnRevision, StatusDone:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown task status %q", s)
	}
}

type Task struct {
	ID          string    `yaml:"id"`
	ProjectID   string    `yaml:"project_id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Status      Status    `yaml:"status"`
	Hours       int       `yaml:"hours"`
	HoursLogged int       `yaml:"hours_logged"`
	StartDate   time.Time `yaml:"start_date"`
	Deadline    time.Time `yaml:"deadline"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

// Assignment links a task to one assignee.
type Assignment struct {
	TaskID    string    `yaml:"task_id"`
	UserID    int64     `yaml:"user_id"`
	CreatedAt time.Time `yaml:"created_at"`
}
