package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNoRowMatched is returned by DeleteRow when the WHERE clause matched nothing.
var ErrNoRowMatched = errors.New("no row matched")

// RowSet is the full content of a table: column names and one value slice per row.
// Values are normalized to int64, float64, string or nil.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// Store reads and writes whole rows of arbitrary tables.
type Store struct {
	db *gorm.DB
}

// NewStore creates a row store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FetchAllRows reads every row of table.
func (s *Store) FetchAllRows(ctx context.Context, table string) (*RowSet, error) {
	rows, err := s.db.WithContext(ctx).Raw("SELECT * FROM " + quote(s.db, table)).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types of %s: %w", table, err)
	}

	set := &RowSet{Columns: columns}
	for rows.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		values := make([]any, len(columns))
		for i, v := range raw {
			values[i], err = normalize(v, types[i])
			if err != nil {
				return nil, fmt.Errorf("failed to read %s.%s: %w", table, columns[i], err)
			}
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of %s: %w", table, err)
	}
	return set, nil
}

// UpsertRow inserts the row, replacing any row with the same primary key.
func (s *Store) UpsertRow(ctx context.Context, table string, columns []string, values []any) error {
	if len(columns) == 0 || len(columns) != len(values) {
		return fmt.Errorf("upsert into %s: %d columns for %d values", table, len(columns), len(values))
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(s.db, c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("REPLACE INTO %s (%s) VALUES (%s)", quote(s.db, table), strings.Join(quoted, ", "), placeholders)

	if err := s.db.WithContext(ctx).Exec(query, values...).Error; err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

// DeleteRow deletes the rows matching every given column/value pair. It returns
// ErrNoRowMatched when no row was deleted.
func (s *Store) DeleteRow(ctx context.Context, table string, whereColumns []string, whereValues []any) error {
	if len(whereColumns) == 0 || len(whereColumns) != len(whereValues) {
		return fmt.Errorf("delete from %s: %d columns for %d values", table, len(whereColumns), len(whereValues))
	}

	conditions := make([]string, len(whereColumns))
	for i, c := range whereColumns {
		conditions[i] = quote(s.db, c) + " = ?"
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", quote(s.db, table), strings.Join(conditions, " AND "))

	result := s.db.WithContext(ctx).Exec(query, whereValues...)
	if result.Error != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete from %s where %s: %w", table, strings.Join(whereColumns, ", "), ErrNoRowMatched)
	}
	return nil
}

// normalize converts a scanned driver value to int64, float64, string or nil.
// The MySQL text protocol returns most values as []byte, so the column's database
// type decides how those bytes are read.
func normalize(v any, ct *sql.ColumnType) (any, error) {
	dbType := strings.ToUpper(ct.DatabaseTypeName())
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return normalizeText(string(val), dbType)
	case string:
		return normalizeText(val, dbType)
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case uint64:
		if val > 1<<63-1 {
			return strconv.FormatUint(val, 10), nil
		}
		return int64(val), nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func normalizeText(s, dbType string) (any, error) {
	switch {
	case strings.Contains(dbType, "INT"):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		// unsigned BIGINT above MaxInt64
		return s, nil
	case dbType == "DECIMAL" || dbType == "NUMERIC":
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", s, err)
		}
		f, _ := d.Float64()
		return f, nil
	case dbType == "DOUBLE" || dbType == "FLOAT" || dbType == "REAL":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", s, err)
		}
		return f, nil
	default:
		return s, nil
	}
}
