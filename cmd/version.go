package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, injected at link time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	versionFormat      string
	versionFormatCheck func() error
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for motif.

Examples:
  motif version                   # Show version
  motif version --format json     # Output as JSON`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionFormatCheck = addFormatFlag(versionCmd.Flags(), &versionFormat, "text", "json")
}

func runVersion(cmd *cobra.Command, args []string) error {
	if err := versionFormatCheck(); err != nil {
		return err
	}
	switch versionFormat {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"version":  version,
			"commit":   commit,
			"date":     date,
			"go":       runtime.Version(),
			"platform": runtime.GOOS + "/" + runtime.GOARCH,
		})
	default:
		fmt.Printf("motif %s (commit %s, built %s, %s %s/%s)\n",
			version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	}
}
