package report

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wolt-report-service/internal/compose"
)

const reportsSchema = `
create table if not exists reports (
	id          text primary key,
	format      text not null,
	storage_key text not null,
	location    text not null,
	order_count integer not null,
	currencies  text[] not null default '{}',
	skipped     text[] not null default '{}',
	created_at  timestamptz not null
)`

// PostgresRegistry stores report metadata in the reports table.
type PostgresRegistry struct {
	db *pgxpool.Pool
}

// NewPostgresRegistry creates the reports table when missing.
func NewPostgresRegistry(ctx context.Context, db *pgxpool.Pool) (*PostgresRegistry, error) {
	if _, err := db.Exec(ctx, reportsSchema); err != nil {
		return nil, errors.Wrap(err, "create reports table")
	}
	return &PostgresRegistry{db: db}, nil
}

func (p *PostgresRegistry) Save(ctx context.Context, rep Report) error {
	currencies := rep.Currencies
	if currencies == nil {
		currencies = []string{}
	}
	skipped := rep.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	_, err := p.db.Exec(ctx, `
		insert into reports (id, format, storage_key, location, order_count, currencies, skipped, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		on conflict (id) do nothing
	`, rep.ID, string(rep.Format), rep.Key, rep.Location, rep.OrderCount, currencies, skipped, rep.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert report")
	}
	return nil
}

func (p *PostgresRegistry) Get(ctx context.Context, id string) (*Report, error) {
	var (
		rep    Report
		format string
	)
	err := p.db.QueryRow(ctx, `
		select id, format, storage_key, location, order_count, currencies, skipped, created_at
		from reports
		where id = $1
	`, id).Scan(&rep.ID, &format, &rep.Key, &rep.Location, &rep.OrderCount, &rep.Currencies, &rep.Skipped, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select report")
	}
	rep.Format = compose.Format(format)
	if len(rep.Skipped) == 0 {
		rep.Skipped = nil
	}
	return &rep, nil
}
