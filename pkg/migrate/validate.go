package migrate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotationUp    = "-- +goose Up"
	annotationDown  = "-- +goose Down"
	annotationBegin = "-- +goose StatementBegin"
	annotationEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks migration filenames, unique versions and goose annotations.
// An empty directory is valid.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		if err := validateFile(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return nil
}

func validateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var sawUp, sawDown bool
	open := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case annotationUp:
			if sawDown {
				return fmt.Errorf("%q must come before %q", annotationUp, annotationDown)
			}
			sawUp = true
		case annotationDown:
			if open != 0 {
				return fmt.Errorf("unterminated statement block before %q", annotationDown)
			}
			sawDown = true
		case annotationBegin:
			if open != 0 {
				return fmt.Errorf("nested %q", annotationBegin)
			}
			open++
		case annotationEnd:
			if open == 0 {
				return fmt.Errorf("%q without matching begin", annotationEnd)
			}
			open--
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	switch {
	case !sawUp:
		return fmt.Errorf("missing %q", annotationUp)
	case !sawDown:
		return fmt.Errorf("missing %q", annotationDown)
	case open != 0:
		return fmt.Errorf("unterminated statement block")
	}
	return nil
}
