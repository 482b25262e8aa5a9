package project

import "context"

type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	GetByJoinKey(ctx context.Context, key string) (*Project, error)
	ListByUser(ctx context.Context, userID int64) ([]*Project, error)
}

type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	Get(ctx context.Context, projectID string, userID int64) (*Membership, error)
	Update(ctx context.Context, m *Membership) error
	ListByProject(ctx context.Context, projectID string) ([]*Membership, error)
}
