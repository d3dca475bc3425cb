// Command spool is a file-backed, multi-process-safe issue tracker.
// All state lives in a .spool/ data directory; every command locks the
// directory, works against a fresh snapshot, and exits.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spool-project/spool/internal/config"
	"github.com/spool-project/spool/internal/oplog"
	"github.com/spool-project/spool/internal/tracker"
	"github.com/spool-project/spool/internal/utils"
)

var (
	jsonOutput bool
	dataDirArg string
	actorArg   string
	sessionArg string

	mgr   *tracker.Manager
	opLog *oplog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spool",
	Short: "File-backed issue tracker for agentic workflows",
	Long: `spool tracks issues, priorities, and dependency edges in plain
JSONL files. A per-directory lock file makes concurrent use from
multiple processes safe: every command takes the lock, rebuilds its
view from disk, applies the change, and releases.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !jsonOutput {
		jsonOutput = config.GetBool("json")
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opLog != nil {
		_ = opLog.Close()
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON format")
	rootCmd.PersistentFlags().StringVar(&dataDirArg, "dir", "", "Data directory (default: discovered .spool/)")
	rootCmd.PersistentFlags().StringVar(&actorArg, "actor", "", "Actor recorded on events")
	rootCmd.PersistentFlags().StringVar(&sessionArg, "session", "", "Session ID linked to events")
}

// resolveDataDir returns the data directory for this invocation:
// --dir flag, SPOOL_DATA_DIR / config, then .spool/ discovery.
func resolveDataDir() string {
	if dataDirArg != "" {
		return utils.CanonicalizePath(dataDirArg)
	}
	if configured := config.GetString("data-dir"); configured != "" {
		return utils.CanonicalizePath(configured)
	}
	return utils.FindDataDir()
}

// requireManager initializes the global manager, or exits with a hint
// to run 'spool init' when no data directory exists.
func requireManager() *tracker.Manager {
	if mgr != nil {
		return mgr
	}
	dir := resolveDataDir()
	if dir == "" {
		fmt.Fprintf(os.Stderr, "Error: no .spool directory found (run 'spool init' first, or pass --dir)\n")
		os.Exit(1)
	}
	if err := checkFormatVersion(config.GetString("format-version")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	actor := actorArg
	if actor == "" {
		actor = config.GetString("actor")
	}
	session := sessionArg
	if session == "" {
		session = config.GetString("session-id")
	}

	opts := []tracker.Option{tracker.WithActor(actor), tracker.WithSessionID(session)}
	if timeout := config.GetDuration("lock-timeout"); timeout > 0 {
		opts = append(opts, tracker.WithLockTimeout(timeout))
	}
	m, err := tracker.New(dir, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	mgr = m
	opLog = oplog.New(filepath.Join(dir, "spool.log"))
	return mgr
}

// logOp records a mutating command in the rotating operations log.
func logOp(format string, args ...interface{}) {
	if opLog != nil {
		opLog.Printf(format, args...)
	}
}

// priorityAliases maps the named priority levels agents tend to pass
// onto the numeric scale.
var priorityAliases = map[string]int{
	"critical": 0,
	"high":     1,
	"medium":   2,
	"normal":   2,
	"low":      3,
	"deferred": 4,
}

// parsePriority accepts either a numeric priority or a named alias.
func parsePriority(value string) (int, error) {
	if p, ok := priorityAliases[strings.ToLower(value)]; ok {
		return p, nil
	}
	p, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid priority %q (use 0-4 or critical|high|medium|normal|low|deferred)", value)
	}
	return p, nil
}

// parseMetadata converts repeated key=value flags into a metadata map.
func parseMetadata(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata %q (expected key=value)", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}
