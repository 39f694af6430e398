package node

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/onramp-dev/onramp/pkg/logger"
)

// rnVersion is the React Native release new projects are pinned to.
const rnVersion = "0.81.1"

// rnCLIVersion is the @react-native-community/cli release used for init
// and required as a devDependency for autolinking.
const rnCLIVersion = "20.0.2"

var wordRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// ProjectName converts an arbitrary directory name into a valid React
// Native app name: alphanumeric PascalCase starting with a letter.
func ProjectName(s string) string {
	parts := wordRe.FindAllString(s, -1)
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

// SyncAppName keeps build/app.json in line with the native scheme name.
// index.js reads the name from app.json, so nothing else needs rewriting.
func SyncAppName(buildDir, nativeName string) {
	path := filepath.Join(buildDir, "app.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		fmt.Printf("Warning: could not update app.json: %v\n", err)
		return
	}
	data["name"] = nativeName
	if display, _ := data["displayName"].(string); display == "" {
		data["displayName"] = nativeName
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		fmt.Printf("Warning: could not update app.json: %v\n", err)
	}
}

// EnsureCLIDeps makes sure the React Native community CLI packages are
// present as devDependencies; autolinking (use_native_modules!) needs
// them at pod-install time.
func EnsureCLIDeps(ctx context.Context, buildDir string, env []string) {
	raw, err := os.ReadFile(filepath.Join(buildDir, "package.json"))
	if err != nil {
		return
	}

	var pkg struct {
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		fmt.Printf("Warning: could not verify RN CLI devDependencies: %v\n", err)
		return
	}

	needed := []string{
		"@react-native-community/cli",
		"@react-native-community/cli-platform-ios",
		"@react-native-community/cli-platform-android",
	}
	var missing []string
	for _, name := range needed {
		if _, ok := pkg.DevDependencies[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return
	}

	fmt.Println("Adding React Native CLI devDependencies:", strings.Join(missing, ", "))
	args := []string{"i", "-D"}
	for _, name := range needed {
		args = append(args, name+"@^"+rnCLIVersion)
	}
	cmd := exec.CommandContext(ctx, "npm", args...)
	cmd.Dir = buildDir
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("Warning: could not add RN CLI devDependencies: %v\n", err)
	}
}

// EnsurePods runs pod install for the iOS project. macOS only; a missing
// CocoaPods install is reported but not fatal.
func EnsurePods(ctx context.Context, iosDir string, env []string) {
	if runtime.GOOS != "darwin" {
		return
	}
	if info, err := os.Stat(iosDir); err != nil || !info.IsDir() {
		return
	}
	if _, err := exec.LookPath("pod"); err != nil {
		fmt.Println("CocoaPods not found (skipping). Install with `brew install cocoapods`.")
		return
	}

	fmt.Println("Ensuring iOS dependencies (Pods)...")
	cmd := exec.CommandContext(ctx, "pod", "install")
	cmd.Dir = iosDir
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Println("`pod install` failed. Common causes:")
		fmt.Println(" - Missing @react-native-community/cli devDependencies")
		fmt.Println(" - Ruby/CocoaPods setup issues")
		fmt.Printf("Try: `cd build && npm i -D @react-native-community/cli@^%s "+
			"@react-native-community/cli-platform-ios@^%s "+
			"@react-native-community/cli-platform-android@^%s`\n",
			rnCLIVersion, rnCLIVersion, rnCLIVersion)
		fmt.Println("Then: `cd build/ios && pod install`")
		return
	}
	fmt.Println("iOS dependencies installed")
}

// EnsureNativeProjects makes sure build/ios and build/android exist,
// initializing them through the React Native CLI when missing. The CLI
// writes into a throwaway directory; only the native project trees and a
// fallback package.json are copied into build/.
func EnsureNativeProjects(ctx context.Context, projectRoot string, env []string, projectName string) error {
	buildDir := filepath.Join(projectRoot, "build")
	iosDir := filepath.Join(buildDir, "ios")
	androidDir := filepath.Join(buildDir, "android")

	nativeName := ProjectName(projectName)
	if nativeName == "App" || projectName == "" {
		nativeName = ProjectName(filepath.Base(projectRoot))
	}

	if dirExists(iosDir) && dirExists(androidDir) {
		EnsureCLIDeps(ctx, buildDir, env)
		EnsurePods(ctx, iosDir, env)
		// Keep names in sync in case the user renamed the folder.
		SyncAppName(buildDir, ProjectName(filepath.Base(projectRoot)))
		return nil
	}

	fmt.Println("Native projects not found. Initializing...")

	if fileExists(filepath.Join(buildDir, "package.json")) && !dirExists(filepath.Join(buildDir, "node_modules")) {
		fmt.Println("Installing npm dependencies...")
		cmd := exec.CommandContext(ctx, "npm", "install", "--legacy-peer-deps")
		cmd.Dir = buildDir
		cmd.Env = env
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("npm install: %w", err)
		}
	}

	EnsureCLIDeps(ctx, buildDir, env)

	tempDir := filepath.Join(projectRoot, "temp_rn_init")
	defer os.RemoveAll(tempDir)

	initCmd := exec.CommandContext(ctx, "npx", "--yes",
		"@react-native-community/cli@"+rnCLIVersion, "init", nativeName,
		"--version", rnVersion,
		"--directory", tempDir,
		"--skip-install",
	)
	initCmd.Dir = projectRoot
	initCmd.Env = env
	initCmd.Stdout = os.Stdout
	initCmd.Stderr = os.Stderr
	if err := initCmd.Run(); err != nil {
		return fmt.Errorf("react-native init: %w", err)
	}

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	if !dirExists(iosDir) {
		if err := copyTree(filepath.Join(tempDir, "ios"), iosDir); err != nil {
			return fmt.Errorf("copy ios project: %w", err)
		}
		fmt.Printf("iOS project initialized (%s)\n", nativeName)
	}
	if !dirExists(androidDir) {
		if err := copyTree(filepath.Join(tempDir, "android"), androidDir); err != nil {
			return fmt.Errorf("copy android project: %w", err)
		}
		fmt.Printf("Android project initialized (%s)\n", nativeName)
	}
	if !fileExists(filepath.Join(buildDir, "package.json")) {
		if err := copyFile(filepath.Join(tempDir, "package.json"), filepath.Join(buildDir, "package.json")); err != nil {
			logger.Warn("node: could not copy package.json", "err", err)
		}
	}

	SyncAppName(buildDir, nativeName)
	WriteNvmrc(projectRoot)
	EnsurePods(ctx, iosDir, env)
	return nil
}

// RepairIOS blows away the derived intermediates that commonly cause
// xcodebuild exit code 65, then reinstalls pods.
func RepairIOS(ctx context.Context, buildDir string) {
	iosDir := filepath.Join(buildDir, "ios")

	if home, err := os.UserHomeDir(); err == nil {
		os.RemoveAll(filepath.Join(home, "Library", "Developer", "Xcode", "DerivedData"))
	}
	os.RemoveAll(filepath.Join(iosDir, "Pods"))
	os.Remove(filepath.Join(iosDir, "Podfile.lock"))

	cmd := exec.CommandContext(ctx, "pod", "install")
	cmd.Dir = iosDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("pod install failed: %v\n", err)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
