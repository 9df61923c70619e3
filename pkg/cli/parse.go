package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idforge/idforge/pkg/cliconfig"
)

var parseFlags configFlags

var parseCmd = &cobra.Command{
	Use:   "parse <identifier>",
	Short: "Decompose an identifier into its parts",
	Long: `Parse an identifier back into core payload, checksum blocks, and decoded
metadata. The configuration flags must match the ones used at generation
time. Parsing does not verify checksums; use 'idforge verify' for that.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := cliconfig.LoadEnv(cmd.Context())
		if err != nil {
			return err
		}
		cfg, err := parseFlags.build(cmd, env)
		if err != nil {
			return err
		}
		gen, cleanup, err := newGenerator(env)
		if err != nil {
			return err
		}
		defer cleanup()

		parsed, err := gen.Parse(cmd.Context(), cfg, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(parsed)
		}

		fmt.Printf("full:        %s\n", parsed.Full)
		if parsed.Prefix != "" {
			fmt.Printf("prefix:      %s\n", parsed.Prefix)
		}
		if parsed.Suffix != "" {
			fmt.Printf("suffix:      %s\n", parsed.Suffix)
		}
		fmt.Printf("core:        %s\n", parsed.Core)
		if len(parsed.Checksums) > 0 {
			fmt.Printf("checksums:   %s\n", strings.Join(parsed.Checksums, " "))
		}
		fmt.Printf("lengths:     total=%d content=%d separators=%d\n",
			parsed.TotalLength, parsed.ContentLength, parsed.SeparatorCount)

		md := parsed.Metadata
		if md.HasTimestamp {
			fmt.Printf("timestamp:   %s\n", md.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))
		}
		if md.HasCounter {
			fmt.Printf("counter:     %d\n", md.Counter)
		}
		if md.HasExpiry {
			fmt.Printf("expires:     %s (expired=%t)\n", md.ExpiresAt.Format("2006-01-02T15:04:05.000Z07:00"), md.Expired)
		}
		if md.GeoRegion != "" {
			fmt.Printf("geo:         %s\n", md.GeoRegion)
		}
		if md.DeviceHash != "" {
			fmt.Printf("device:      %s (match=%t)\n", md.DeviceHash, md.DeviceMatch)
		}
		if md.Custom != nil {
			custom, _ := json.Marshal(md.Custom)
			fmt.Printf("custom:      %s\n", custom)
		}
		return nil
	},
}

func init() {
	parseFlags.register(parseCmd)
	rootCmd.AddCommand(parseCmd)
}
