package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	BuiltBy   string `json:"built_by"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newBuildInfo(version, commit, date, builtBy string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuiltBy:   builtBy,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date, builtBy string) *cobra.Command {
	info := newBuildInfo(version, commit, date, builtBy)

	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the cdl release, the commit and date it was built from, and the Go toolchain and platform.",
		Example: `  cdl version
  cdl version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if IsJSONOutput() {
				return info.writeJSON(cmd.OutOrStdout())
			}
			return info.writeText(cmd.OutOrStdout())
		},
	}
}

func (b BuildInfo) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(struct {
		Status string    `json:"status"`
		Data   BuildInfo `json:"data"`
	}{Status: "success", Data: b})
	if err != nil {
		return fmt.Errorf("encode version: %w", err)
	}
	return nil
}

func (b BuildInfo) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "cdl version %s\ncommit %s, built %s by %s\n%s %s\n",
		b.Version, b.Commit, b.Date, b.BuiltBy, b.GoVersion, b.Platform)
	if err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	return nil
}
