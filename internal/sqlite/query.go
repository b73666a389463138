package sqlite

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// sqlb builds statements with SQLite's question-mark placeholders.
var sqlb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// timeLayout is fixed-width so that timestamps stored as TEXT sort in time
// order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// querier is the subset of *sql.DB and *sql.Tx the tables use.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to v4 if the v7 clock source fails.
		return uuid.New().String()
	}
	return id.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// toInt converts numeric filter values, including float64 from decoded JSON.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// exists reports whether a row matching eq exists in table.
func exists(q querier, table string, eq squirrel.Eq) (bool, error) {
	query, args, err := sqlb.Select("1").From(table).Where(eq).Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = q.QueryRow(query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// applyCommonFilter narrows a select by cluster_id and limit.
func applyCommonFilter(sel squirrel.SelectBuilder, filter types.Filter, byCluster bool) (squirrel.SelectBuilder, error) {
	if byCluster {
		if v, ok := filter[types.FilterClusterID]; ok {
			cid, ok := v.(string)
			if !ok {
				return sel, types.ErrInvalidFilter
			}
			sel = sel.Where(squirrel.Eq{"cluster_id": cid})
		}
	}
	if v, ok := filter[types.FilterLimit]; ok {
		l, ok := toInt(v)
		if !ok {
			return sel, types.ErrInvalidFilter
		}
		if l > 0 {
			sel = sel.Limit(uint64(l))
		}
	}
	return sel, nil
}
