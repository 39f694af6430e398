package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProjectCreatesBackendAndFrontend(t *testing.T) {
	parent := t.TempDir()
	root, err := Project(parent, "my-app", false)
	if err != nil {
		t.Fatal(err)
	}

	wantFiles := []string{
		"go.mod",
		"app/main.go",
		"app/settings.json",
		"app/models/models.go",
		"app/api/index.go",
		"app/db/migrations/doc.go",
		"app/static/.gitkeep",
		"build/package.json",
		"build/app.json",
		"build/App.js",
		"build/index.js",
		"build/index.web.js",
		"build/webpack.config.js",
		"build/public/index.html",
	}
	for _, rel := range wantFiles {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	mainGo, err := os.ReadFile(filepath.Join(root, "app", "main.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(mainGo), `_ "my-app/app/api"`) {
		t.Errorf("main.go missing api blank import:\n%s", mainGo)
	}

	settings, _ := os.ReadFile(filepath.Join(root, "app", "settings.json"))
	if !strings.Contains(string(settings), `"backend": false`) {
		t.Errorf("full project should scaffold backend disabled:\n%s", settings)
	}

	appJSON, _ := os.ReadFile(filepath.Join(root, "build", "app.json"))
	if !strings.Contains(string(appJSON), `"name": "MyApp"`) {
		t.Errorf("app.json native name wrong:\n%s", appJSON)
	}
}

func TestProjectAPIOnlySkipsFrontend(t *testing.T) {
	parent := t.TempDir()
	root, err := Project(parent, "svc", true)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(root, "build")); !os.IsNotExist(err) {
		t.Error("api-only project should have no build directory")
	}

	settings, _ := os.ReadFile(filepath.Join(root, "app", "settings.json"))
	if !strings.Contains(string(settings), `"backend": true`) {
		t.Errorf("api-only project should enable the backend:\n%s", settings)
	}
}

func TestProjectRefusesExistingDirectory(t *testing.T) {
	parent := t.TempDir()
	if err := os.Mkdir(filepath.Join(parent, "taken"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Project(parent, "taken", false); err == nil {
		t.Fatal("expected error for existing directory")
	}
}

func TestMigrationStub(t *testing.T) {
	root := t.TempDir()
	path, err := Migration(root, "add users table")
	if err != nil {
		t.Fatal(err)
	}

	base := filepath.Base(path)
	if !strings.HasSuffix(base, "_add_users_table.go") {
		t.Errorf("migration file name = %s", base)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"package migrations",
		"migration.Register(",
		"type AddUsersTable struct{}",
		"func (m *AddUsersTable) Up(db *gorm.DB) error",
		"func (m *AddUsersTable) Down(db *gorm.DB) error",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("migration stub missing %q:\n%s", want, content)
		}
	}
}

func TestModulePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"My App", "myapp"},
		{"todo-api", "todo-api"},
		{"***", "app"},
	}
	for _, c := range cases {
		if got := ModulePath(c.in); got != c.want {
			t.Errorf("ModulePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
