package user

import "time"

// User is a registered chat user. The ID is the transport's user
// identity, so registration never has to mint one.
type User struct {
	ID        int64     `yaml:"id"`
	FullName  string    `yaml:"full_name"`
	CreatedAt time.Time `yaml:"created_at"`
}
