// assets/embed.go
//
// Embedded database migrations, applied in lexical order at startup.

package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var FS embed.FS

// Migrations returns the embedded *.sql paths in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(FS, "sql")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		out = append(out, "sql/"+e.Name())
	}
	sort.Strings(out)
	return out, nil
}
