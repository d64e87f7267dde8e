package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/domain"
)

// HistoryRepo implements domain.HistoryRepo
type HistoryRepo struct {
	log zerolog.Logger
	db  *DB
}

// NewHistoryRepo creates a new history repository
func NewHistoryRepo(log zerolog.Logger, db *DB) domain.HistoryRepo {
	return &HistoryRepo{
		log: log.With().Str("repo", "history").Logger(),
		db:  db,
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Record inserts one history point and prunes everything but the keep most
// recent points, in a single transaction. A run either leaves a complete
// bounded history or none of its changes.
func (r *HistoryRepo) Record(ctx context.Context, point domain.HistoryPoint, keep int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.append(ctx, tx, point); err != nil {
		return err
	}
	if err := r.prune(ctx, tx, keep); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}

	return nil
}

func (r *HistoryRepo) append(ctx context.Context, ex execer, point domain.HistoryPoint) error {
	queryBuilder := r.db.squirrel.
		Insert("history").
		Columns("date", "total_citations", "h_index", "i10_index").
		Values(point.Date.UTC().Format(time.RFC3339), point.TotalCitations, point.HIndex, point.I10Index)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("append")

	_, err = ex.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	return nil
}

func (r *HistoryRepo) prune(ctx context.Context, ex execer, keep int) error {
	query := `DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT $1)`

	r.log.Trace().Str("query", query).Int("keep", keep).Msg("prune")

	res, err := ex.ExecContext(ctx, query, keep)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		r.log.Debug().Int64("deleted", n).Msg("pruned history")
	}

	return nil
}

// Recent returns the n most recent history points in chronological order
func (r *HistoryRepo) Recent(ctx context.Context, n int) ([]domain.HistoryPoint, error) {
	queryBuilder := r.db.squirrel.
		Select("date", "total_citations", "h_index", "i10_index").
		From("history").
		OrderBy("id DESC").
		Limit(uint64(n))

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Recent")

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	var points []domain.HistoryPoint
	for rows.Next() {
		var p domain.HistoryPoint
		var date string
		if err := rows.Scan(&date, &p.TotalCitations, &p.HIndex, &p.I10Index); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		p.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid date in history row: %s", date)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	// Rows come back newest first; reverse into chronological order.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}
