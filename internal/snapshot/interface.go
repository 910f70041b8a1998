package snapshot

import (
	"context"

	"domainvar/pkg/domain"
	"domainvar/pkg/restricted"
)

//go:generate mockgen -package mocksnapshot -source=interface.go -destination=mock/mocksnapshot.go *
type Service interface {
	Save(ctx context.Context, name string, d *restricted.Domain[string], order string) (*domain.Snapshot, error)
	Load(ctx context.Context, name string) (*domain.Snapshot, error)
	Restore(ctx context.Context, name string, opts ...restricted.Option) (*restricted.Domain[string], error)
	List(ctx context.Context) ([]domain.Snapshot, error)
	Delete(ctx context.Context, name string) error
}
