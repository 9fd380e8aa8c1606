package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"candidate-match/internal/database"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

type TableColumns struct {
	Table   string
	Columns []string
}

// CheckSchema looks up every required table in one query and reports all
// missing columns together.
func CheckSchema(ctx context.Context, db database.DB, reqs []TableColumns) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	tables := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if r.Table == "" {
			return fmt.Errorf("empty table")
		}
		tables = append(tables, r.Table)
	}
	if len(tables) == 0 {
		return nil
	}

	rows, err := db.Query(ctx,
		`SELECT table_name, column_name
		 FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = ANY($1)`,
		tables,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]map[string]struct{}{}
	for rows.Next() {
		var table, col string
		if err := rows.Scan(&table, &col); err != nil {
			return err
		}
		if existing[table] == nil {
			existing[table] = map[string]struct{}{}
		}
		existing[table][col] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if missing := missingColumns(existing, reqs); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}

func missingColumns(existing map[string]map[string]struct{}, reqs []TableColumns) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range reqs {
		for _, c := range r.Columns {
			key := r.Table + "." + c
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, ok := existing[r.Table][c]; !ok {
				out = append(out, key)
			}
		}
	}
	return out
}
