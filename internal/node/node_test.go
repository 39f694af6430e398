package node

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestProjectName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"myapp", "Myapp"},
		{"my-cool-app", "MyCoolApp"},
		{"my_app 2", "MyApp2"},
		{"42tasks", "App42tasks"},
		{"", "App"},
		{"---", "App"},
		{"MyApp", "Myapp"},
	}
	for _, c := range cases {
		if got := ProjectName(c.in); got != c.want {
			t.Errorf("ProjectName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	cases := []struct {
		in   string
		want Version
	}{
		{"v20.19.4", Version{20, 19, 4}},
		{"18.0.0\n", Version{18, 0, 0}},
		{"garbage", Version{}},
		{"", Version{}},
	}
	for _, c := range cases {
		if got := ParseVersion(c.in); got != c.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestVersionLess(t *testing.T) {
	min := ParseVersion(MinVersion)
	if !ParseVersion("v18.20.0").Less(min) {
		t.Error("18.x should be below the minimum")
	}
	if ParseVersion("v20.19.4").Less(min) {
		t.Error("the minimum itself should not be below the minimum")
	}
	if ParseVersion("v21.0.0").Less(min) {
		t.Error("21.x should satisfy the minimum")
	}
}

func TestPrependPath(t *testing.T) {
	env := PrependPath([]string{"HOME=/root", "PATH=/usr/bin"}, "/opt/node/bin")
	found := false
	for _, kv := range env {
		if kv == "PATH=/opt/node/bin:/usr/bin" {
			found = true
		}
	}
	if !found {
		t.Errorf("PATH not prepended: %v", env)
	}
}

func TestSyncAppName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	if err := os.WriteFile(path, []byte(`{"name": "Old", "displayName": ""}`), 0o644); err != nil {
		t.Fatal(err)
	}

	SyncAppName(dir, "Myapp")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatal(err)
	}
	if data["name"] != "Myapp" {
		t.Errorf("name = %v", data["name"])
	}
	if data["displayName"] != "Myapp" {
		t.Errorf("empty displayName should be filled: %v", data["displayName"])
	}
}

func TestSyncAppNameKeepsDisplayName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	if err := os.WriteFile(path, []byte(`{"name": "Old", "displayName": "Pretty"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	SyncAppName(dir, "Myapp")

	raw, _ := os.ReadFile(path)
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatal(err)
	}
	if data["displayName"] != "Pretty" {
		t.Errorf("displayName overwritten: %v", data["displayName"])
	}
}

func TestCountIOSSimulators(t *testing.T) {
	out := `== Devices ==
-- iOS 18.0 --
    iPhone 15 (ABC-123) (Shutdown)
    iPhone 15 Pro (DEF-456) (Shutdown)
-- tvOS 18.0 --
    Apple TV (GHI-789) (Shutdown)
-- iOS 17.5 --
    iPhone SE (JKL-012) (Booted)
`
	if got := countIOSSimulators(out); got != 3 {
		t.Errorf("countIOSSimulators = %d, want 3", got)
	}
	if got := countIOSSimulators("== Devices ==\n"); got != 0 {
		t.Errorf("empty list counted %d", got)
	}
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "copy")
	if err := copyTree(src, dst); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "sub", "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("copied content = %q", data)
	}
}
