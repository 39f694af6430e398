// Package node manages the Node.js toolchain and the React Native
// native projects that generated apps ship with. The CLI never assumes
// a working Node install: it checks the version on PATH and falls back
// to nvm when the one it finds is too old.
package node

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/onramp-dev/onramp/pkg/logger"
)

// MinVersion is the oldest Node.js release React Native tolerates.
const MinVersion = "20.19.4"

// TrackMajor is the major release line nvm installs when repairing.
const TrackMajor = "20"

var semverRe = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)`)

// Version is a parsed semantic version.
type Version [3]int

// Less reports whether v precedes other.
func (v Version) Less(other Version) bool {
	for i := range v {
		if v[i] != other[i] {
			return v[i] < other[i]
		}
	}
	return false
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// ParseVersion reads a "v20.19.4"-style string. Unparseable input
// yields the zero version, which always compares as too old.
func ParseVersion(s string) Version {
	m := semverRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}
	}
	var v Version
	for i := 0; i < 3; i++ {
		v[i], _ = strconv.Atoi(m[i+1])
	}
	return v
}

// CurrentVersion asks the node on PATH for its version.
func CurrentVersion(ctx context.Context) Version {
	out, err := exec.CommandContext(ctx, "node", "-v").Output()
	if err != nil {
		return Version{}
	}
	return ParseVersion(string(out))
}

// EnsureEnv guarantees Node >= MinVersion and returns the environment
// (os.Environ shape) that child processes should run with. If the PATH
// node is new enough it is used as-is; otherwise nvm installs the
// TrackMajor line and PATH is prefixed with the selected binary's
// directory. When nvm is missing the current environment is returned
// unchanged with a printed hint; the caller proceeds at its own risk.
func EnsureEnv(ctx context.Context) []string {
	env := os.Environ()

	if cur := CurrentVersion(ctx); !cur.Less(ParseVersion(MinVersion)) {
		return env
	}

	nvmDir := filepath.Join(homeDir(), ".nvm")
	nvmSh := filepath.Join(nvmDir, "nvm.sh")
	if _, err := os.Stat(nvmSh); err != nil {
		fmt.Println("nvm not found; please install nvm (https://github.com/nvm-sh/nvm).")
		fmt.Printf("Alternatively, install Node %s.x manually (>= %s).\n", TrackMajor, MinVersion)
		return env
	}

	script := fmt.Sprintf(`
      export NVM_DIR=%q
      [ -s "$NVM_DIR/nvm.sh" ] && . "$NVM_DIR/nvm.sh"
      nvm install %s
      nvm use %s
      echo NODE_BIN:$(command -v node)
      node --version
    `, nvmDir, TrackMajor, TrackMajor)

	out, err := exec.CommandContext(ctx, "bash", "-lc", script).CombinedOutput()
	if err != nil {
		fmt.Printf("Failed to switch Node with nvm. Output:\n%s\n", out)
		return env
	}

	nodeBin := ""
	for _, line := range strings.Split(string(out), "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "NODE_BIN:"); ok {
			nodeBin = strings.TrimSpace(rest)
		}
	}
	if nodeBin == "" {
		fmt.Println("Could not resolve Node path from nvm output; falling back to current PATH.")
		return env
	}

	logger.Info("node: using nvm-managed binary", "path", nodeBin)
	return PrependPath(env, filepath.Dir(nodeBin))
}

// PrependPath returns env with dir prepended to its PATH entry.
func PrependPath(env []string, dir string) []string {
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if rest, ok := strings.CutPrefix(kv, "PATH="); ok {
			out = append(out, "PATH="+dir+string(os.PathListSeparator)+rest)
			found = true
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, "PATH="+dir)
	}
	return out
}

// WriteNvmrc pins the Node track for the project root and its build
// directory so shells with nvm auto-switching pick the right version.
func WriteNvmrc(projectRoot string) {
	for _, dir := range []string{projectRoot, filepath.Join(projectRoot, "build")} {
		path := filepath.Join(dir, ".nvmrc")
		if err := os.WriteFile(path, []byte(TrackMajor+"\n"), 0o644); err != nil {
			logger.Debug("node: skip .nvmrc", "path", path, "err", err)
		}
	}
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
