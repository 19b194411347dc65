package cmd

import (
	"fmt"
	"os"

	_ "github.com/aisha-shell/aish/builtins"
	"github.com/aisha-shell/aish/core"
	"github.com/spf13/cobra"
)

var commandLine string

// rootCmd runs the interactive shell, or a single command with -c.
var rootCmd = &cobra.Command{
	Use:   "aish",
	Short: "Advanced Intelligent Shell Assistant",
	Long: `aish is an interactive Unix command interpreter with pipelines,
job control, aliases, globbing, an emacs-style line editor, and an
optional AI assistant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, err := core.NewShell()
		if err != nil {
			return err
		}

		if commandLine != "" {
			os.Exit(shell.RunCommand(commandLine))
		}
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("aish: %s: %w", args[0], err)
			}
			defer f.Close()
			shell.Interp.ShellName = args[0]
			shell.Interp.Positional = args[1:]
			os.Exit(shell.RunScript(f))
		}

		os.Exit(shell.Run())
		return nil
	},
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&commandLine, "command", "c", "", "execute a single command line and exit")
}
