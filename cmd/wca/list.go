package main

import (
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/search"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var sender, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all chats sorted by last activity",
		Long:  `Opens a TUI panel showing all indexed chats, most recently active first. Type to search message bodies instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := index.IndexAll(db, cfg.ExportRoot); err != nil {
				log.Warn().Err(err).Msg("refresh index")
			}

			return tui.RunList(db, search.Options{
				Sender: sender,
				Since:  since,
				Limit:  limit,
			})
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Only messages from this sender")
	cmd.Flags().StringVar(&since, "since", "", "Only chats active since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
