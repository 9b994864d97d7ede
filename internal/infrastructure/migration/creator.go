package migration

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/golang-migrate/migrate/v4/source"
)

// versionWidth is the zero padding of sequential versions: 000001, 000002, ...
const versionWidth = 6

var fileTemplate = template.Must(template.New("migration").Parse(
	`-- {{.Name}}{{if eq .Direction "down"}} (rollback){{end}}
-- Created: {{.Created}}
{{- if and .Description (eq .Direction "up")}}
-- {{.Description}}
{{- end}}

`))

// MigrationFile describes an up/down pair written by CreateMigration.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Created     string
	UpPath      string
	DownPath    string
}

// CreateMigration writes empty up and down files numbered one past the
// highest version already in dir. The up file is removed again if the
// down file cannot be written.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}
	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}

	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}
	version := fmt.Sprintf("%0*d", versionWidth, next)
	base := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Created:     time.Now().UTC().Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	if err := writeMigration(mf.UpPath, source.Up, mf); err != nil {
		return nil, err
	}
	if err := writeMigration(mf.DownPath, source.Down, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

// writeMigration refuses to overwrite an existing file.
func writeMigration(path string, dir source.Direction, mf *MigrationFile) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	err = fileTemplate.Execute(f, struct {
		*MigrationFile
		Direction source.Direction
	}{mf, dir})
	return errors.Join(err, f.Close())
}

// sanitizeName lower-cases name into snake_case, dropping anything that is
// not an ASCII letter or digit.
func sanitizeName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || unicode.IsSpace(r)
	})
	kept := words[:0]
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, w)
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, "_")
}

// MigrationInfo is one version found on disk or in the embedded set.
type MigrationInfo struct {
	Version uint
	Name    string
	HasDown bool
}

// ListMigrations returns the .sql migrations at the root of fsys ordered by
// version, using golang-migrate's file naming rules. A missing directory
// yields an empty list.
func ListMigrations(fsys fs.FS) ([]MigrationInfo, error) {
	entries, err := fs.ReadDir(fsys, ".")
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return []MigrationInfo{}, nil
	case err != nil:
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	found := make(map[uint]*MigrationInfo)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		m, err := source.Parse(entry.Name())
		if err != nil || m.Identifier == "" {
			continue
		}
		info := found[m.Version]
		if info == nil {
			info = &MigrationInfo{Version: m.Version, Name: m.Identifier}
			found[m.Version] = info
		}
		info.HasDown = info.HasDown || m.Direction == source.Down
	}

	list := make([]MigrationInfo, 0, len(found))
	for _, info := range found {
		list = append(list, *info)
	}
	slices.SortFunc(list, func(a, b MigrationInfo) int { return cmp.Compare(a.Version, b.Version) })
	return list, nil
}
