// Package migrations embeds the table schema. The same statements run on
// PostgreSQL and SQLite.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Up returns the contents of every *.up.sql file in name order.
func Up() ([]string, error) {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	stmts := make([]string, 0, len(names))
	for _, name := range names {
		b, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, strings.TrimSpace(string(b)))
	}
	return stmts, nil
}
