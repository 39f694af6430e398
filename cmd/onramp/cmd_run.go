package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onramp-dev/onramp/config"
	"github.com/onramp-dev/onramp/internal/devserver"
	"github.com/onramp-dev/onramp/internal/node"
)

var (
	runPort    int
	runWebOnly bool
	iosPort    int
)

// onramp run [--port N] [--web-only]
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the development servers (web frontend + backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runWebOnly {
			return runWeb(cmd.Context(), false, runPort)
		}
		return runDefault(cmd.Context(), runPort)
	},
}

// onramp web
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the web development server only (no backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWeb(cmd.Context(), false, devserver.DefaultPort)
	},
}

// onramp ios [--port N]
var iosCmd = &cobra.Command{
	Use:   "ios",
	Short: "Run the iOS simulator (plus backend when enabled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIOS(cmd.Context(), iosPort)
	},
}

// onramp android
var androidCmd = &cobra.Command{
	Use:   "android",
	Short: "Run the Android emulator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAndroid(cmd.Context())
	},
}

func init() {
	runCmd.Flags().IntVar(&runPort, "port", devserver.DefaultPort, "Port for the development server")
	runCmd.Flags().BoolVar(&runWebOnly, "web-only", false, "Run web without backend")
	iosCmd.Flags().IntVar(&iosPort, "port", devserver.DefaultPort, "Port for the development server")
}

// loadSettings reads app/settings.json, defaulting to backend enabled.
func loadSettings() *config.Settings {
	settings, err := config.Load(projectRoot())
	if err != nil {
		fmt.Printf("Error reading settings: %v. Running backend only\n", err)
		return config.Default(projectRoot())
	}
	return settings
}

func buildDir() string { return filepath.Join(projectRoot(), "build") }

func hasBuildDir() bool {
	info, err := os.Stat(buildDir())
	return err == nil && info.IsDir()
}

// startBackendWatch resolves the port and runs the backend watch loop
// in the foreground until interrupted.
func startBackendWatch(ctx context.Context, port int) error {
	port, err := devserver.ResolvePort(port)
	if err != nil {
		fmt.Println("User declined to use another port. Exiting.")
		return nil
	}
	return devserver.New(projectRoot(), tracker).RunWithWatch(ctx, port)
}

// npmCmd builds an npm invocation in build/ with the repaired Node env.
func npmCmd(ctx context.Context, env []string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "npm", args...)
	cmd.Dir = buildDir()
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// runDefault is `onramp run`: web frontend in the background plus the
// backend watch loop, honouring the project's backend setting.
func runDefault(ctx context.Context, port int) error {
	if !hasBuildDir() {
		fmt.Println("No build directory found. Running backend only")
		return startBackendWatch(ctx, port)
	}

	env := node.EnsureEnv(ctx)
	settings := loadSettings()

	if !settings.Backend {
		fmt.Println("Backend is disabled. Running web development server")
		web, err := tracker.Start(npmCmd(ctx, env, "run", "start:web"))
		if err != nil {
			return fmt.Errorf("start web server: %w", err)
		}
		select {
		case <-ctx.Done():
		case <-web.Done():
		}
		return nil
	}

	fmt.Println("Backend is enabled. Starting web frontend and backend")
	if _, err := tracker.Start(npmCmd(ctx, env, "run", "start:web")); err != nil {
		return fmt.Errorf("start web server: %w", err)
	}
	return startBackendWatch(ctx, port)
}

// runWeb is `onramp web` / `onramp run --web-only`.
func runWeb(ctx context.Context, withBackend bool, port int) error {
	if !hasBuildDir() {
		fmt.Println("Build directory not found. Run 'onramp new <name>' first.")
		return nil
	}

	env := node.EnsureEnv(ctx)

	if withBackend && loadSettings().Backend {
		fmt.Println("Starting web frontend and backend...")
		if _, err := tracker.Start(npmCmd(ctx, env, "run", "start:web")); err != nil {
			return fmt.Errorf("start web server: %w", err)
		}
		return startBackendWatch(ctx, port)
	}

	fmt.Println("Running web development server...")
	return npmCmd(ctx, env, "run", "start:web").Run()
}

// runIOS is `onramp ios`: Xcode and simulator checks, native project
// repair, then the simulator build plus backend watch loop.
func runIOS(ctx context.Context, port int) error {
	if !hasBuildDir() {
		fmt.Println("Build directory not found. Run 'onramp new <name>' first.")
		return nil
	}
	if runtime.GOOS != "darwin" {
		fmt.Println("iOS development requires macOS.")
		return nil
	}

	env := node.EnsureEnv(ctx)
	if v := node.CurrentVersion(ctx); v != (node.Version{}) {
		fmt.Printf("Using Node.js v%s environment\n", v)
	}

	nativeName := node.ProjectName(filepath.Base(projectRoot()))
	iosDir := filepath.Join(buildDir(), "ios")

	if !node.CheckXcode(ctx, iosDir) {
		return nil
	}

	fmt.Println("Preparing iOS development...")
	if err := node.EnsureNativeProjects(ctx, projectRoot(), env, nativeName); err != nil {
		fmt.Printf("Failed to set up iOS project: %v\n", err)
		return nil
	}
	node.SyncAppName(buildDir(), nativeName)
	node.EnsurePods(ctx, iosDir, env)

	if !node.CheckSimulators(ctx) {
		return nil
	}
	fmt.Println("Preparing simulators...")
	node.ShutdownSimulators(ctx)

	iosBuild := exec.CommandContext(ctx, "npx", "react-native", "run-ios")
	iosBuild.Dir = buildDir()
	iosBuild.Env = env
	iosBuild.Stdout = os.Stdout
	iosBuild.Stderr = os.Stderr

	if loadSettings().Backend {
		fmt.Println("Starting iOS (in background) + backend dev server...")
		if _, err := tracker.Start(iosBuild); err != nil {
			fmt.Printf("Failed to launch iOS build: %v\n", err)
			return nil
		}
		return startBackendWatch(ctx, port)
	}

	fmt.Println("Starting iOS simulator...")
	if err := iosBuild.Run(); err != nil {
		printIOSTroubleshooting(err)
	}
	return nil
}

func printIOSTroubleshooting(err error) {
	fmt.Println("Failed to start iOS simulator.")
	msg := err.Error()
	if ee, ok := err.(*exec.ExitError); ok {
		msg += string(ee.Stderr)
	}
	switch {
	case strings.Contains(msg, "DVTDownloads.framework") || strings.Contains(msg, "IDESimulatorFoundation"):
		fmt.Println("\nXcode Framework Issue Detected:")
		fmt.Println("  sudo xcodebuild -runFirstLaunch")
	case strings.Contains(msg, "styleText is not a function"):
		fmt.Println("\nNode/RN CLI cache issue:")
		fmt.Println("1) npm cache clean --force")
		fmt.Println("2) rm -rf build/node_modules && (cd build && npm install)")
	default:
		fmt.Println("\nTroubleshooting steps:")
		fmt.Println("1) sudo xcodebuild -runFirstLaunch")
		fmt.Println("2) Ensure iOS Simulator is installed in Xcode")
		fmt.Println("3) Try: (cd build && npx react-native run-ios)")
		fmt.Println("4) Or open build/ios/*.xcworkspace in Xcode and build there")
		fmt.Println("5) https://reactnative.dev/docs/set-up-your-environment")
	}
}

// runAndroid is `onramp android`.
func runAndroid(ctx context.Context) error {
	if !hasBuildDir() {
		fmt.Println("Build directory not found. Run 'onramp new <name>' first.")
		return nil
	}

	env := node.EnsureEnv(ctx)

	nativeName := node.ProjectName(filepath.Base(projectRoot()))
	if err := node.EnsureNativeProjects(ctx, projectRoot(), env, nativeName); err != nil {
		fmt.Printf("Failed to set up native project: %v\n", err)
		return nil
	}

	fmt.Println("Preparing Android development...")
	if v := node.CurrentVersion(ctx); v != (node.Version{}) {
		fmt.Printf("Using Node.js v%s environment\n", v)
	}

	if err := npmCmd(ctx, env, "run", "android").Run(); err != nil {
		fmt.Println("Failed to start Android emulator. Make sure Android Studio and SDK are installed.")
	}
	return nil
}
