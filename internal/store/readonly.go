package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

const maxResultRows = 500

var (
	destructivePattern = regexp.MustCompile(`(?i)\b(drop|delete|update|insert|alter|truncate|create|grant|revoke|merge|copy|vacuum|call|execute)\b`)

	ErrUnsafeSQL = errors.New("unsafe sql")
)

// SanitizeSelect accepts a single SELECT statement that only reads allowed tables.
func SanitizeSelect(query string, allowedTables []string) (string, error) {
	query = strings.TrimSpace(query)
	query = strings.TrimSuffix(query, ";")
	if query == "" {
		return "", fmt.Errorf("%w: %w: SQL vazio", apierr.ErrInvalidInput, ErrUnsafeSQL)
	}
	normalized := strings.ToLower(query)
	if !strings.HasPrefix(normalized, "select") {
		return "", fmt.Errorf("%w: %w: apenas consultas SELECT são permitidas", apierr.ErrInvalidInput, ErrUnsafeSQL)
	}
	if strings.Contains(query, ";") {
		return "", fmt.Errorf("%w: %w: múltiplos comandos não são permitidos", apierr.ErrInvalidInput, ErrUnsafeSQL)
	}
	if destructivePattern.MatchString(query) {
		return "", fmt.Errorf("%w: %w: comando SQL potencialmente destrutivo detectado", apierr.ErrInvalidInput, ErrUnsafeSQL)
	}

	allowed := make(map[string]bool, len(allowedTables))
	for _, t := range allowedTables {
		allowed[strings.ToLower(t)] = true
	}
	var disallowed []string
	for _, table := range referencedTables(query) {
		if !allowed[table] {
			disallowed = append(disallowed, table)
		}
	}
	if len(disallowed) > 0 {
		return "", fmt.Errorf("%w: %w: tabelas não permitidas na consulta: %s", apierr.ErrInvalidInput, ErrUnsafeSQL, strings.Join(disallowed, ", "))
	}
	return query, nil
}

type ResultSet struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Truncated bool             `json:"truncated"`
}

// Reader runs sanitized read-only queries for the data and chart responders.
type Reader struct {
	db      *gorm.DB
	allowed []string

	schemaMu sync.Mutex
	schema   string
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db, allowed: QueryableTables}
}

func (r *Reader) AllowedTables() []string { return r.allowed }

func (r *Reader) Query(ctx context.Context, query string) (*ResultSet, error) {
	if r.db == nil {
		return nil, fmt.Errorf("%w: database not configured", apierr.ErrUnavailable)
	}
	safe, err := SanitizeSelect(query, r.allowed)
	if err != nil {
		return nil, err
	}

	var out *ResultSet
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := tx.Raw(safe).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanRows(rows)
		return err
	}, &sql.TxOptions{ReadOnly: !IsSQLite(r.db)})
	if err != nil {
		if errors.Is(err, apierr.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: query failed: %w", apierr.ErrPersistence, err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := &ResultSet{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		if len(rs.Rows) >= maxResultRows {
			rs.Truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}

// SchemaSummary describes the queryable tables for SQL-writing prompts. A
// summary is cached only once every table was read, so a cancelled request
// does not pin an incomplete schema.
func (r *Reader) SchemaSummary(ctx context.Context) string {
	if r.db == nil {
		return ""
	}
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()
	if r.schema != "" {
		return r.schema
	}

	migrator := r.db.WithContext(ctx).Migrator()
	var b strings.Builder
	complete := true
	for _, table := range r.allowed {
		cols, err := migrator.ColumnTypes(table)
		if err != nil {
			complete = false
			continue
		}
		parts := make([]string, 0, len(cols))
		for _, c := range cols {
			parts = append(parts, fmt.Sprintf("%s %s", c.Name(), strings.ToLower(c.DatabaseTypeName())))
		}
		fmt.Fprintf(&b, "%s(%s)\n", table, strings.Join(parts, ", "))
	}
	if complete {
		r.schema = b.String()
	}
	return b.String()
}
