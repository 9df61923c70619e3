package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// versionOutput is the JSON shape of the version command.
type versionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show idforge version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		version := Version
		commit := Commit

		if info, ok := debug.ReadBuildInfo(); ok {
			if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && commit == "none" {
					commit = setting.Value
				}
			}
		}

		out := versionOutput{
			Version: version,
			Commit:  commit,
			Date:    BuildDate,
			Go:      runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(out)
		}
		fmt.Printf("idforge %s (commit %s, built %s, %s %s/%s)\n",
			out.Version, out.Commit, out.Date, out.Go, out.OS, out.Arch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
