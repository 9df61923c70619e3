package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idforge/idforge/pkg/cliconfig"
)

var verifyFlags configFlags

var verifyCmd = &cobra.Command{
	Use:   "verify <identifier>",
	Short: "Verify an identifier against its generation configuration",
	Long: `Verify an identifier. The configuration flags must match the ones used at
generation time; the identifier itself carries no configuration header.

Exits 0 when the identifier verifies, 1 when it does not. With --json the
reason code is included in the output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := cliconfig.LoadEnv(cmd.Context())
		if err != nil {
			return err
		}
		cfg, err := verifyFlags.build(cmd, env)
		if err != nil {
			return err
		}
		gen, cleanup, err := newGenerator(env)
		if err != nil {
			return err
		}
		defer cleanup()

		result := gen.VerifyDetail(cmd.Context(), cfg, args[0])

		if jsonOutput {
			if err := json.NewEncoder(os.Stdout).Encode(map[string]any{
				"valid":  result.OK,
				"reason": result.Reason,
			}); err != nil {
				return err
			}
		} else if result.OK {
			fmt.Println("valid")
		} else {
			fmt.Printf("invalid (%s)\n", result.Reason)
		}

		if !result.OK {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	verifyFlags.register(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}
