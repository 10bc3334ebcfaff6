// Package sqlitedb dumps the tables of a SQLite database as text.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	// SQLite driver (pure Go, no CGO).
	_ "modernc.org/sqlite"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles SQLite database files.
type Extractor struct{}

// New creates a new SQLite extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kind returns domain.FileKindSQLite.
func (e *Extractor) Kind() domain.FileKind {
	return domain.FileKindSQLite
}

// Extract renders every user table as "Table: <name>" followed by one
// tuple per row, and returns it as a single chunk on page 1. The database
// is opened read-only.
func (e *Extractor) Extract(ctx context.Context, path string, _ domain.ChunkOptions) ([]domain.Chunk, error) {
	text, err := Dump(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionIO, path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []domain.Chunk{{Text: text, SourcePage: 1}}, nil
}

// Dump returns the text rendering of every table in the database at path.
func Dump(ctx context.Context, path string) (string, error) {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, table := range tables {
		sb.WriteString("Table: " + table + "\n")
		if err := dumpTable(ctx, db, table, &sb); err != nil {
			return "", fmt.Errorf("table %s: %w", table, err)
		}
	}
	return sb.String(), nil
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func dumpTable(ctx context.Context, db *sql.DB, table string, sb *strings.Builder) error {
	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoted) //nolint:gosec // identifier is quoted
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		sb.WriteString(FormatRow(values))
		sb.WriteByte('\n')
	}
	return rows.Err()
}

// FormatRow renders a row as a parenthesised tuple: strings are single
// quoted, NULL is None, and a one-value row keeps its trailing comma.
func FormatRow(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case string:
		return quote(val)
	case []byte:
		return "b" + quote(string(val))
	case time.Time:
		return quote(val.Format(time.RFC3339Nano))
	default:
		return quote(fmt.Sprint(val))
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	case f == math.Trunc(f) && math.Abs(f) < 1e16:
		return strconv.FormatFloat(f, 'f', 1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// quote wraps s in single quotes, switching to double quotes when s
// contains a single quote but no double quote.
func quote(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}
	var sb strings.Builder
	sb.WriteString(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case string(r) == q:
			sb.WriteString(`\` + q)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteString(q)
	return sb.String()
}
