package errorlog

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
}
