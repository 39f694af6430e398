// Package scaffold generates new project trees: the Go backend under
// app/, the React Native frontend under build/, and migration stubs.
// Templates are embedded .stub files; a project can override any of
// them by dropping a same-named file into .onramp/stubs/.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

//go:embed stubs/*.stub
var defaultStubs embed.FS

// StubData holds the variables available to .stub templates.
type StubData struct {
	Name       string // project directory name as given
	Module     string // Go module path of the generated project
	Native     string // React Native app name (PascalCase)
	StructName string // migration struct name
	Migration  string // full migration name with timestamp prefix
	Backend    bool   // settings.json backend flag
}

// renderStub locates the stub (user override first, embedded fallback)
// and executes it as a text/template.
func renderStub(stubName string, data StubData) (string, error) {
	var content []byte
	var err error

	userPath := filepath.Join(".onramp", "stubs", stubName+".stub")
	if _, errStat := os.Stat(userPath); errStat == nil {
		content, err = os.ReadFile(userPath)
		if err != nil {
			return "", fmt.Errorf("failed to read user stub %s: %v", userPath, err)
		}
	} else {
		content, err = defaultStubs.ReadFile("stubs/" + stubName + ".stub")
		if err != nil {
			return "", fmt.Errorf("embedded stub not found: %s", stubName)
		}
	}

	t, err := template.New(stubName).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %v", stubName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %v", stubName, err)
	}
	return buf.String(), nil
}

// writeStub renders stubName and writes it to path, creating parent
// directories as needed.
func writeStub(path, stubName string, data StubData) error {
	out, err := renderStub(stubName, data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

// backendFiles maps generated backend paths (relative to the project
// root) to their stubs.
var backendFiles = map[string]string{
	"go.mod":                   "go_mod",
	"app/main.go":              "main_go",
	"app/settings.json":        "settings_json",
	"app/models/models.go":     "models_go",
	"app/api/index.go":         "index_go",
	"app/db/migrations/doc.go": "migrations_doc_go",
	".gitignore":               "gitignore",
}

// frontendFiles maps generated frontend paths (relative to build/) to
// their stubs.
var frontendFiles = map[string]string{
	"package.json":      "package_json",
	"app.json":          "app_json",
	"babel.config.js":   "babel_config_js",
	"metro.config.js":   "metro_config_js",
	"webpack.config.js": "webpack_config_js",
	"App.js":            "app_js",
	"index.js":          "index_js",
	"index.web.js":      "index_web_js",
	"public/index.html": "index_html",
}

// Project generates a new project at parentDir/name. With apiOnly the
// React Native frontend is skipped and the backend is enabled from the
// start. An existing directory is refused, never overwritten.
func Project(parentDir, name string, apiOnly bool) (string, error) {
	root := filepath.Join(parentDir, name)
	if _, err := os.Stat(root); err == nil {
		return "", fmt.Errorf("app name already exists at this directory")
	}

	data := StubData{
		Name:    name,
		Module:  ModulePath(name),
		Native:  nativeName(name),
		Backend: apiOnly,
	}

	kind := "backend"
	if apiOnly {
		kind = "API"
	}
	fmt.Printf("Creating OnRamp %s...\n", kind)

	for rel, stub := range backendFiles {
		if err := writeStub(filepath.Join(root, filepath.FromSlash(rel)), stub, data); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "app", "db"), 0o755); err != nil {
		return "", err
	}
	// Files dropped into app/static/ are served under /static/.
	staticDir := filepath.Join(root, "app", "static")
	if err := os.MkdirAll(staticDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(staticDir, ".gitkeep"), nil, 0o644); err != nil {
		return "", err
	}

	if !apiOnly {
		if err := Frontend(filepath.Join(root, "build"), data); err != nil {
			return "", err
		}
	}

	fmt.Printf("OnRamp %s created\n", kind)
	return root, nil
}

// Frontend generates the React Native + React Strict DOM app in
// buildDir. It is also callable on its own to restore a deleted build
// directory.
func Frontend(buildDir string, data StubData) error {
	fmt.Printf("Creating React Native app with React Strict DOM: %s\n", data.Native)
	for rel, stub := range frontendFiles {
		if err := writeStub(filepath.Join(buildDir, filepath.FromSlash(rel)), stub, data); err != nil {
			return err
		}
	}
	return nil
}

// Migration writes a timestamped migration stub into app/db/migrations
// and returns its path. name is snake_cased into the file name.
func Migration(projectRoot, name string) (string, error) {
	if name == "" {
		name = "migration"
	}
	full := time.Now().Format("20060102150405") + "_" + snake(name)

	data := StubData{
		Migration:  full,
		StructName: structName(name),
	}
	path := filepath.Join(projectRoot, "app", "db", "migrations", full+".go")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration already exists: %s", path)
	}
	if err := writeStub(path, "migration_go", data); err != nil {
		return "", err
	}
	return path, nil
}

// ModulePath derives a valid Go module path from a project name.
func ModulePath(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}

// nativeName PascalCases a project name for React Native.
func nativeName(s string) string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	if len(parts) == 0 {
		return "App"
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	name := b.String()
	if name[0] >= '0' && name[0] <= '9' {
		name = "App" + name
	}
	return name
}

// snake lowercases and joins word runs with underscores.
func snake(s string) string {
	var parts []string
	var cur strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cur.WriteRune(r)
		} else if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	if len(parts) == 0 {
		return "migration"
	}
	return strings.Join(parts, "_")
}

// structName CamelCases a migration name for its Go type.
func structName(s string) string {
	parts := strings.Split(snake(s), "_")
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
