package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idforge/idforge/pkg/cliconfig"
)

var (
	generateFlags configFlags
	generateCount int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one or more identifiers",
	Long: `Generate identifiers under the given configuration.

Examples:
  # 20 random characters with a trailing checksum block
  idforge generate --length 20 --checksum

  # API key: prefix, separators, HMAC mode keyed from the environment
  IDFORGE_SECRET=s3cret idforge generate -m hmac -l 32 --prefix AK --separator - --stride 8

  # Session token with timestamp and a one-hour expiry
  idforge generate -l 40 --timestamp --ttl 1h --checksum

  # Reproducible setup from a profile file
  idforge generate --profile api-keys.yaml --count 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := cliconfig.LoadEnv(cmd.Context())
		if err != nil {
			return err
		}
		cfg, err := generateFlags.build(cmd, env)
		if err != nil {
			return err
		}
		gen, cleanup, err := newGenerator(env)
		if err != nil {
			return err
		}
		defer cleanup()

		ids, err := gen.GenerateBatch(cmd.Context(), cfg, generateCount)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{"identifiers": ids})
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1, "Number of identifiers to generate")
	rootCmd.AddCommand(generateCmd)
}
