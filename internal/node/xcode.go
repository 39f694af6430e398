package node

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// minXcode is the oldest Xcode release known to build the pinned React
// Native version cleanly.
const minXcode = 16.1

// frameworkErrs are the error fragments that indicate missing Xcode
// framework components fixable by -runFirstLaunch.
var frameworkErrs = []string{"DVTDownloads.framework", "IDESimulatorFoundation"}

// confirm prompts y/n on stdin. Anything but "y" is a no.
func confirm(prompt string) bool {
	fmt.Printf("%s (y/n): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}

// CheckXcode verifies the Xcode install: version floor, then a probe of
// the build tooling that detects half-installed framework components.
// Returns false when the user declines to continue past a failure.
func CheckXcode(ctx context.Context, iosDir string) bool {
	out, err := exec.CommandContext(ctx, "xcodebuild", "-version").Output()
	if err != nil {
		fmt.Println("Could not detect Xcode version. Make sure Xcode is installed.")
		return confirm("Continue anyway?")
	}

	versionLine, _, _ := strings.Cut(string(out), "\n")
	fmt.Printf("Found %s\n", versionLine)
	if fields := strings.Fields(versionLine); len(fields) > 1 {
		if v, _ := strconv.ParseFloat(majorMinor(fields[1]), 64); v < minXcode {
			fmt.Printf("Warning: React Native %s works best with Xcode %.1f or later.\n", rnVersion, minXcode)
			fmt.Printf("   Current version: %s\n", fields[1])
			if !confirm("Continue anyway?") {
				return false
			}
		}
	}

	fmt.Println("Checking if Xcode components are properly installed...")
	if err := exec.CommandContext(ctx, "xcodebuild", "-showsdks").Run(); err != nil {
		return handleComponentErr(ctx, err)
	}

	listCmd := exec.CommandContext(ctx, "xcodebuild", "-list")
	if dirExists(iosDir) {
		listCmd.Dir = iosDir
	}
	if err := listCmd.Run(); err != nil {
		return handleComponentErr(ctx, err)
	}

	fmt.Println("Xcode components are working properly")
	return true
}

// handleComponentErr inspects an xcodebuild failure and runs the first
// launch setup when it looks like missing framework components.
func handleComponentErr(ctx context.Context, err error) bool {
	msg := err.Error()
	if ee, ok := err.(*exec.ExitError); ok {
		msg += string(ee.Stderr)
	}

	missing := false
	for _, frag := range frameworkErrs {
		if strings.Contains(msg, frag) {
			missing = true
		}
	}
	if !missing {
		fmt.Printf("Xcode check failed: %v\n", err)
		fmt.Println("Continuing with iOS setup...")
		return true
	}

	fmt.Println("Detected missing Xcode framework components.")
	fmt.Println("Running Xcode first launch setup to install required components...")
	setup := exec.CommandContext(ctx, "sudo", "xcodebuild", "-runFirstLaunch")
	setup.Stdout = os.Stdout
	setup.Stderr = os.Stderr
	setup.Stdin = os.Stdin
	if err := setup.Run(); err != nil {
		fmt.Printf("Xcode first launch failed: %v\n", err)
		return confirm("Continue anyway?")
	}
	fmt.Println("Xcode components installed successfully")
	return true
}

// CheckSimulators looks for available iOS simulators and offers to
// download a runtime when none exist. Failures are non-fatal.
func CheckSimulators(ctx context.Context) bool {
	fmt.Println("Checking for iOS simulators...")
	out, err := exec.CommandContext(ctx, "xcrun", "simctl", "list", "devices", "available").Output()
	if err != nil {
		fmt.Println("Could not check for simulators. Continuing anyway...")
		return true
	}

	count := countIOSSimulators(string(out))
	if count > 0 {
		fmt.Printf("Found %d iOS simulator(s)\n", count)
		return true
	}

	fmt.Println("No iOS simulators found.")
	if !confirm("Download an iOS Simulator runtime now?") {
		return true
	}
	fmt.Println("Downloading iOS platform (this may take a while)...")
	dl := exec.CommandContext(ctx, "xcodebuild", "-downloadPlatform", "iOS")
	dl.Stdout = os.Stdout
	dl.Stderr = os.Stderr
	if err := dl.Run(); err != nil {
		fmt.Printf("Failed to download iOS platform automatically: %v\n", err)
		fmt.Println("Open Xcode -> Settings -> Platforms -> download an iOS runtime.")
		return confirm("Continue anyway?")
	}
	fmt.Println("iOS platform downloaded successfully")
	return true
}

// countIOSSimulators parses `simctl list devices available` output,
// counting device lines in iOS sections only.
func countIOSSimulators(out string) int {
	count := 0
	inIOS := false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "-- iOS"):
			inIOS = true
		case strings.HasPrefix(trimmed, "--"):
			inIOS = false
		case inIOS && trimmed != "" && strings.Contains(trimmed, "(") && strings.Contains(trimmed, ")"):
			count++
		}
	}
	return count
}

// ShutdownSimulators stops any running simulators so a fresh boot does
// not conflict with a stale one.
func ShutdownSimulators(ctx context.Context) {
	if err := exec.CommandContext(ctx, "xcrun", "simctl", "shutdown", "all").Run(); err == nil {
		fmt.Println("Shutdown any running simulators to prevent boot conflicts")
	}
}

// majorMinor reduces "16.2.1" to "16.2".
func majorMinor(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) == 1 {
		return parts[0] + ".0"
	}
	return parts[0] + "." + parts[1]
}
