package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresArchive persists report history in a reports table:
//
//	CREATE TABLE IF NOT EXISTS reports (
//	    job_id           TEXT PRIMARY KEY,
//	    project_title    TEXT NOT NULL,
//	    site_address     TEXT NOT NULL,
//	    development_type TEXT NOT NULL DEFAULT '',
//	    council          TEXT NOT NULL DEFAULT '',
//	    status           TEXT NOT NULL,
//	    section_count    INT NOT NULL,
//	    created_at       TIMESTAMPTZ NOT NULL
//	);
type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresArchive(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresArchive{pool: pool}, nil
}

func (a *PostgresArchive) Close() {
	a.pool.Close()
}

func (a *PostgresArchive) Save(ctx context.Context, record Record) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO reports (
			job_id,
			project_title,
			site_address,
			development_type,
			council,
			status,
			section_count,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (job_id) DO UPDATE
		SET status = EXCLUDED.status,
			section_count = EXCLUDED.section_count
	`,
		record.JobID,
		record.ProjectTitle,
		record.SiteAddress,
		record.DevelopmentType,
		record.Council,
		record.Status,
		record.SectionCount,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report record: %w", err)
	}
	return nil
}

func (a *PostgresArchive) List(ctx context.Context, filter Filter) ([]Record, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	baseQuery, args := buildFilters(filter)

	var total int
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := a.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count report records: %w", err)
	}

	listQuery := fmt.Sprintf(
		`SELECT job_id, project_title, site_address, development_type, council, status, section_count, created_at
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		baseQuery,
		len(args)+1,
		len(args)+2,
	)
	listArgs := append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	rows, err := a.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list report records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			record    Record
			createdAt time.Time
		)
		if err := rows.Scan(
			&record.JobID,
			&record.ProjectTitle,
			&record.SiteAddress,
			&record.DevelopmentType,
			&record.Council,
			&record.Status,
			&record.SectionCount,
			&createdAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan report record: %w", err)
		}
		record.CreatedAt = createdAt
		records = append(records, record)
	}

	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate report records: %w", rows.Err())
	}

	return records, total, nil
}

func buildFilters(filter Filter) (string, []any) {
	query := strings.Builder{}
	query.WriteString("FROM reports WHERE 1=1")

	args := make([]any, 0, 3)
	argIndex := 1

	if council := strings.TrimSpace(filter.Council); council != "" {
		query.WriteString(fmt.Sprintf(" AND council = $%d", argIndex))
		args = append(args, council)
		argIndex++
	}

	if filter.From != nil {
		query.WriteString(fmt.Sprintf(" AND created_at >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		query.WriteString(fmt.Sprintf(" AND created_at <= $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}

	return query.String(), args
}
