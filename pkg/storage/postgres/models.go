package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"domainvar/pkg/domain"

	"github.com/google/uuid"
)

type PgSnapshot struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Name     string          `db:"name"`
	Ordering string          `db:"ordering"`
	Values   json.RawMessage `db:"vals"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgSnapshot) ToDomain() (*domain.Snapshot, error) {
	var values []string
	if err := json.Unmarshal(p.Values, &values); err != nil {
		return nil, fmt.Errorf("could not unmarshal snapshot values: %w", err)
	}
	if values == nil {
		values = []string{}
	}

	updatedAt := p.CreatedAt
	if p.UpdatedAt.Valid {
		updatedAt = p.UpdatedAt.Time
	}

	return &domain.Snapshot{
		ID:        domain.SnapshotID(p.ID),
		Name:      p.Name,
		Order:     p.Ordering,
		Values:    values,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (p *PgSnapshot) FromDomain(snapshot domain.Snapshot) error {
	values := snapshot.Values
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot values: %w", err)
	}

	*p = PgSnapshot{
		ID:        uuid.UUID(snapshot.ID),
		Name:      snapshot.Name,
		Ordering:  snapshot.Order,
		Values:    raw,
		CreatedAt: snapshot.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  snapshot.UpdatedAt,
			Valid: !snapshot.UpdatedAt.IsZero(),
		},
	}

	return nil
}

func pgSnapshotsToDomain(rows []PgSnapshot) ([]domain.Snapshot, error) {
	out := make([]domain.Snapshot, 0, len(rows))
	for _, row := range rows {
		d, err := row.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
