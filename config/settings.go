// Package config loads the per-project settings file for onramp projects.
//
// A project carries its settings in app/settings.json:
//
//	{
//	  "backend": true,
//	  "database": {
//	    "engine": "sqlite",
//	    "name": "db.sqlite3"
//	  }
//	}
//
// Every field is optional; unset fields fall back to the defaults returned
// by Default(). A missing file yields the defaults too; a project
// without settings is still a valid project.
//
// Settings are loaded once at process start and passed explicitly to the
// collaborators that need them; there is no package-level cache.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultEngine     = "sqlite"
	defaultSQLiteName = "db.sqlite3"

	// SettingsFile is the settings path relative to the project root.
	SettingsFile = "app/settings.json"
)

// Database describes the database connection block of a settings file.
type Database struct {
	Engine   string `json:"engine"` // sqlite | postgres | mysql | sqlserver
	Name     string `json:"name"`   // database name, or file path for sqlite
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// Settings is the resolved configuration of one project.
type Settings struct {
	// Backend toggles whether `onramp run` starts the backend dev server
	// alongside the frontend.
	Backend bool `json:"backend"`

	Database Database `json:"database"`

	// ProjectRoot is the absolute directory the settings were loaded for.
	// Not part of the file; filled in by Load.
	ProjectRoot string `json:"-"`
}

// Default returns the settings used when no file is present.
func Default(projectRoot string) *Settings {
	return &Settings{
		Backend: true,
		Database: Database{
			Engine: defaultEngine,
			Name:   defaultSQLiteName,
			Host:   "localhost",
		},
		ProjectRoot: projectRoot,
	}
}

// Load reads app/settings.json under projectRoot, merges it over the
// defaults, then applies .env overrides from the project root. A missing
// settings file is not an error.
func Load(projectRoot string) (*Settings, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project root: %w", err)
	}

	s := Default(abs)

	path := filepath.Join(abs, filepath.FromSlash(SettingsFile))
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fine, defaults apply.
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		// Unmarshal over the defaults so absent keys keep their values.
		// "backend" absent must stay true, so decode into a shadow first.
		var raw struct {
			Backend  *bool     `json:"backend"`
			Database *Database `json:"database"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if raw.Backend != nil {
			s.Backend = *raw.Backend
		}
		if raw.Database != nil {
			mergeDatabase(&s.Database, raw.Database)
		}
	}

	if err := applyDotEnv(filepath.Join(abs, ".env"), s); err != nil {
		return nil, err
	}

	s.Database.Engine = normalizeEngine(s.Database.Engine)
	return s, nil
}

func mergeDatabase(dst, src *Database) {
	if src.Engine != "" {
		dst.Engine = src.Engine
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.User != "" {
		dst.User = src.User
	}
	if src.Password != "" {
		dst.Password = src.Password
	}
}

// normalizeEngine folds aliases and rejects unknown engines by falling back
// to sqlite, which keeps a typo from taking the dev loop down.
func normalizeEngine(engine string) string {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlserver", "mssql":
		return "sqlserver"
	case "", "sqlite", "sqlite3":
		return "sqlite"
	default:
		return defaultEngine
	}
}

// applyDotEnv overlays DB_* keys from a .env file, if one exists.
// Secrets usually live here rather than in settings.json.
func applyDotEnv(path string, s *Settings) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)

		switch key {
		case "DB_ENGINE":
			s.Database.Engine = value
		case "DB_NAME":
			s.Database.Name = value
		case "DB_HOST":
			s.Database.Host = value
		case "DB_USER":
			s.Database.User = value
		case "DB_PASSWORD":
			s.Database.Password = value
		case "DB_PORT":
			var port int
			if _, err := fmt.Sscanf(value, "%d", &port); err == nil {
				s.Database.Port = port
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// DSN synthesizes the driver connection string for the configured engine.
// SQLite databases live under app/db/ unless an absolute path was given.
func (s *Settings) DSN() string {
	db := s.Database
	switch db.Engine {
	case "postgres":
		port := db.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			db.Host, db.User, db.Password, db.Name, port)
	case "mysql":
		port := db.Port
		if port == 0 {
			port = 3306
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			db.User, db.Password, db.Host, port, db.Name)
	case "sqlserver":
		port := db.Port
		if port == 0 {
			port = 1433
		}
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.User, db.Password, db.Host, port, db.Name)
	default: // sqlite
		name := db.Name
		if name == "" {
			name = defaultSQLiteName
		}
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(s.ProjectRoot, "app", "db", name)
	}
}
