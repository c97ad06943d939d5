package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file; the system environment is
	// used when there is none.
	_ = godotenv.Load()

	env := &cliEnv{}
	if err := newRootCmd(env).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		env.close()
		os.Exit(1)
	}
}

func newRootCmd(env *cliEnv) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "doe",
		Short:         "Sequential design-of-experiments campaigns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&env.dbURL, "db", "", "ledger database (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&env.logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newInitCmd(env),
		newListCmd(env),
		newStatusCmd(env),
		newDesignCmd(env),
		newEvaluateCmd(env),
		newBestCmd(env),
		newReevaluateCmd(env),
		newPhaseCmd(env),
		newReportCmd(env),
		newSimulateCmd(env),
		newServeCmd(env),
	)
	return rootCmd
}
