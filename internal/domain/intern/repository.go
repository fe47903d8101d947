package intern

import "context"

type InternRepository interface {
	GetByID(ctx context.Context, id string) (Intern, error)
}
