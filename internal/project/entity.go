package project

import (
	"fmt"
	"time"
)

type Project struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	OwnerID     int64     `yaml:"owner_id"`
	JoinKey     string    `yaml:"join_key"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

// Role is the closed set of membership roles. Anything outside the
// two values is rejected at parse time.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleMember        Role = "Member"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdministrator:
		return RoleAdministrator, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Membership links a user to a project with a role. One row per
// (project, user) pair.
type Membership struct {
	ProjectID string    `yaml:"project_id"`
	UserID    int64     `yaml:"user_id"`
	Role      Role      `yaml:"role"`
	CreatedAt time.Time `yaml:"created_at"`
}
