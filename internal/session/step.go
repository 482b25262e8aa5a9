package session

import "time"

// Step is the sealed set of conversation states. Each variant carries
// exactly the fields that are valid at that point of its workflow, so a
// half-collected form cannot hold fields from another flow.
type Step interface {
	isStep()
}

// Idle means no workflow is active for the user.
type Idle struct{}

// AwaitingFullName is the single registration step.
type AwaitingFullName struct{}

// Project creation: name, then description.
type AwaitingProjectName struct{}

type AwaitingProjectDescription struct {
	Name string
}

// AwaitingJoinKey waits for a project join key. Invalid keys keep the
// session here so the user can retry.
type AwaitingJoinKey struct{}

// Task creation steps. Each later step repeats the fields collected so
// far; moving back simply drops the tail.
type AwaitingTaskName struct {
	ProjectID string
}

type AwaitingTaskDescription struct {
	ProjectID string
	Name      string
}

type AwaitingTaskAssignees struct {
	ProjectID   string
	Name        string
	Description string
	Selected    *SelectionSet
	Page        int
}

type AwaitingTaskHours struct {
	ProjectID   string
	Name        string
	Description string
	Assignees   []int64
}

type AwaitingTaskDeadline struct {
	ProjectID   string
	Name        string
	Description string
	Assignees   []int64
	Hours       int
	// CalendarMonth is the first day of the month the date picker shows.
	CalendarMonth time.Time
}

type AwaitingTaskConfirm struct {
	ProjectID   string
	Name        string
	Description string
	Assignees   []int64
	Hours       int
	Deadline    time.Time
}

// AwaitingNewStatus is the single task status edit step.
type AwaitingNewStatus struct {
	ProjectID string
	TaskID    string
}

func (Idle) isStep()                       {}
func (AwaitingFullName) isStep()           {}
func (AwaitingProjectName) isStep()        {}
func (AwaitingProjectDescription) isStep() {}
func (AwaitingJoinKey) isStep()            {}
func (AwaitingTaskName) isStep()           {}
func (AwaitingTaskDescription) isStep()    {}
func (AwaitingTaskAssignees) isStep()      {}
func (AwaitingTaskHours) isStep()          {}
func (AwaitingTaskDeadline) isStep()       {}
func (AwaitingTaskConfirm) isStep()        {}
func (AwaitingNewStatus) isStep()          {}

// BypassesCommandFilter reports whether free text must reach the dialog
// handlers while the session sits in this step. These are the in-form
// states; everywhere else stray text is dropped by the filter.
func BypassesCommandFilter(s Step) bool {
	switch s.(type) {
	case AwaitingProjectName, AwaitingProjectDescription, AwaitingJoinKey,
		AwaitingTaskName, AwaitingTaskDescription, AwaitingTaskAssignees,
		AwaitingTaskHours, AwaitingTaskDeadline, AwaitingTaskConfirm,
		AwaitingNewStatus:
		return true
	default:
		return false
	}
}
