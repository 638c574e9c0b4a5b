// Package sqlitepath resolves which SQLite database file verde commands open.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvSQLite overrides the configured database path.
	EnvSQLite = "VERDE_SQLITE"

	// EnvDB is an alias of EnvSQLite.
	EnvDB = "VERDE_DB"

	dbFile = "verde.db"
)

// ResolveSQLitePath picks the database path in order: the explicit override
// (flag or config), VERDE_SQLITE, VERDE_DB, the first existing candidate file
// and finally ~/.verde/verde.db, which is created on first use.
func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv(EnvSQLite)); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv(EnvDB)); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return defaultPath()
}

func sqliteCandidates() []string {
	candidates := []string{
		dbFile,
		filepath.Join(".verde", dbFile),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".verde", dbFile))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "verde", dbFile))
	}

	return candidates
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return dbFile, nil //nolint:nilerr // fall back to the working directory
	}

	dir := filepath.Join(home, ".verde")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFile), nil
}
