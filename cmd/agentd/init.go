// cmd/agentd/init.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chrischeng-c4/agentd-sub001/internal/config"
	"github.com/chrischeng-c4/agentd-sub001/internal/runner"
	"github.com/chrischeng-c4/agentd-sub001/internal/tui"
)

func initCmd() *cobra.Command {
	var (
		defaults bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create the project config in .agentd/config.toml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := runner.ResolveSource(args)
			if err != nil {
				return err
			}
			path := config.Path(root)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			}

			if defaults || !isTerminal(os.Stdin) {
				if err := config.Save(path, config.DefaultConfig()); err != nil {
					return fmt.Errorf("writing config: %w", err)
				}
			} else {
				form := tui.NewInitForm(path)
				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.ErrOrStderr(), "Setup cancelled.")
						return nil
					}
					return fmt.Errorf("setup wizard: %w", err)
				}
				if err := form.Save(); err != nil {
					return fmt.Errorf("writing config: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "write the default config without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing config")
	return cmd
}
