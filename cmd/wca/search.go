package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/render"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/search"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// writeResultsTSV prints one line per hit. The first two fields
// (transcriptKey, msgID) stay plain for fzf {1} {2}.
func writeResultsTSV(w io.Writer, results []search.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%s%s%s\t%s\t%s%s%s\t%s\n",
			r.TranscriptKey,
			r.MsgID,
			sColorDim, r.Ts, sColorReset,
			flatten(r.Title),
			sColorBlue, flatten(render.SenderLabel(r.Sender)), sColorReset,
			colorizeSnippet(flatten(r.Snippet)),
		)
	}
}

func searchCmd() *cobra.Command {
	var sender, since, transcript string
	var all bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed chats",
		Long: `Search indexed messages using FTS5. Output is TSV for fzf integration:
  transcriptKey, msgId, timestamp, chat, sender, snippet

Recommended shell function (add to .zshrc):
  wcaf() {
    wca search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'wca preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --preview-debounce=150 \
      --bind 'enter:execute(wca open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			// Auto-update index before searching
			if _, err := index.IndexAll(db, cfg.ExportRoot); err != nil {
				log.Warn().Err(err).Msg("refresh index")
			}

			opts := search.Options{
				Sender:     sender,
				Since:      since,
				Transcript: transcript,
				All:        all,
				Limit:      limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			writeResultsTSV(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Only messages from this sender (Overall = everyone)")
	cmd.Flags().StringVar(&since, "since", "", "Only messages sent since date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&transcript, "chat", "", "Restrict to one transcript key")
	cmd.Flags().BoolVar(&all, "all", false, "Show every hit instead of the best one per chat")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
