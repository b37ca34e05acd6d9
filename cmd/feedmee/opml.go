package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thomaskoefod/feedmee/internal/opml"
)

func newImportOPMLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-opml <file>",
		Short: "Import subscriptions from an OPML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening opml file: %w", err)
			}
			defer f.Close()

			res, err := opml.Import(f, a.db)
			if err != nil {
				return err
			}
			a.logger.Info("opml imported", "file", args[0], "feeds", res.Feeds, "existing", res.Existing, "skipped", res.Skipped)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d feeds in %d folders (%d already subscribed, %d skipped)\n",
				res.Feeds, res.Folders, res.Existing, res.Skipped)
			return nil
		},
	}
}

func newExportOPMLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export-opml [file]",
		Short: "Export subscriptions as OPML to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := a.db.GetFoldersWithFeeds()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return opml.Export(cmd.OutOrStdout(), folders)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating opml file: %w", err)
			}
			if err := opml.Export(f, folders); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}
