package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/thomaskoefod/feedmee/internal/feed"
	"github.com/thomaskoefod/feedmee/internal/tui"
	"github.com/thomaskoefod/feedmee/pkg/models"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal reader (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	p := tea.NewProgram(tui.New(cmd.Context(), a.db, a.engine), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running reader: %w", err)
	}
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Subscribe to a feed or a website",
		Long: `Subscribe to a URL. Feeds are used directly; an HTML page that links a
feed is replaced by that feed; any other page is followed as a website
whose links are treated as articles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderID := models.DefaultFolderID
			if folder != "" {
				id, err := a.db.CreateFolder(folder)
				if err != nil {
					return err
				}
				folderID = id
			}

			res, err := a.engine.AddFeed(cmd.Context(), args[0], folderID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q (id %d, %s) from %s: %d articles\n",
				res.Name, res.FeedID, res.FeedType, res.FeedURL, res.Inserted)
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "folder to add the feed to (created if missing)")

	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <feed-id>",
		Short: "Fetch new articles for one feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid feed id %q: %w", args[0], err)
			}

			n, err := a.engine.RefreshFeed(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new articles\n", n)
			return nil
		},
	}
}

func newRefreshAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-all",
		Short: "Fetch new articles for every feed, one at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.engine.RefreshAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new articles\n", n)
			return nil
		},
	}
}

func newContentCmd(a *app) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "content <article-url>",
		Short: "Extract the readable content of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.engine.ExtractContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if markdown {
				if content, err = feed.ToMarkdown(content, args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print Markdown instead of HTML")

	return cmd
}

func newFeedsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "feeds",
		Aliases: []string{"ls"},
		Short:   "List folders and their feeds",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := a.db.GetFoldersWithFeeds()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(folders)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFOLDER\tNAME\tTYPE\tUNREAD\tERROR\tURL")
			for _, folder := range folders {
				for _, f := range folder.Feeds {
					errFlag := ""
					if f.HasError {
						errFlag = "yes"
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
						f.ID, folder.Name, f.Name, f.FeedType, f.UnreadCount, errFlag, f.URL)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
