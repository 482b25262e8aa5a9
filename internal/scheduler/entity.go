package scheduler

import "time"

// Schedule is one armed deadline reminder. Exactly one is created per
// task, state `armed` while persisted; firing deletes it. Recipients
// are not part of the record: they are resolved from current project
// membership at fire time.
type Schedule struct {
	ID        string    `yaml:"id"`
	TaskID    string    `yaml:"task_id"`
	FireAt    time.Time `yaml:"fire_at"`
	CreatedAt time.Time `yaml:"created_at"`
}
