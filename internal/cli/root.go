// Package cli holds the eventmanager command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X eventmanager/internal/cli.Version=...".
var Version = "dev"

// NewRootCommand creates the root command for the eventmanager binary.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eventmanager",
		Short:         "Event management API",
		Long:          "Organizers create events, invite participants by email, collect RSVPs and check attendees in by QR code.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewTokenCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
