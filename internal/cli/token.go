package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the admin token of the running server",
		Long: `Show the admin token the server wrote at startup.

The token authorizes POST /api/samples and DELETE /api/samples/{name},
either as a Bearer header or as the token query parameter.

Example:
  sigcalc token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(tokenFilePath(a.cfg.DBPath))
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no server running. Start with: sigcalc serve")
				}
				return fmt.Errorf("failed to read token file: %w", err)
			}

			token := string(data)
			if token == "" {
				return fmt.Errorf("token file is empty. Restart the server with: sigcalc serve")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Example: curl -X DELETE -H 'Authorization: Bearer %s' http://localhost:%d/api/samples/<name>\n",
				token, a.cfg.Server.Port)
			return nil
		},
	}
}

// tokenFilePath keeps the token file next to the database.
func tokenFilePath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), ".sigcalc-token")
}
