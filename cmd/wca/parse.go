package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chatlog"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const recordTimeLayout = "2006-01-02 15:04"

func writeRecords(w io.Writer, records []chatlog.Record, format string) error {
	if records == nil {
		records = []chatlog.Record{}
	}
	switch format {
	case "tsv", "":
		fmt.Fprintln(w, "date\tsender\tday_name\tperiod\tline\tbody")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.Date.Format(recordTimeLayout), flatten(r.Sender), r.DayName, r.Period, r.Line, flatten(r.Body))
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want tsv, json or yaml)", format)
	}
}

func writeStats(w io.Writer, path string, res chatlog.Result, shown int) {
	fmt.Fprintf(w, "file:     %s\n", path)
	fmt.Fprintf(w, "grammar:  %s\n", res.Grammar)
	fmt.Fprintf(w, "layout:   %q\n", res.Layout)
	fmt.Fprintf(w, "matches:  %d\n", res.Matches)
	fmt.Fprintf(w, "dropped:  %d\n", res.Dropped)
	fmt.Fprintf(w, "records:  %d\n", len(res.Records))
	if shown != len(res.Records) {
		fmt.Fprintf(w, "shown:    %d\n", shown)
	}
	media := 0
	for _, r := range res.Records {
		if r.IsMedia() {
			media++
		}
	}
	fmt.Fprintf(w, "media:    %d\n", media)
	fmt.Fprintf(w, "senders:  %d\n", len(chatlog.Users(res.Records))-1)
}

func parseCmd() *cobra.Command {
	var format, user string
	var stats bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse one exported chat and print its message records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			text, err := scan.ReadTranscript(path)
			if err != nil {
				return err
			}

			res, err := chatlog.Parse(text)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			records := chatlog.ForUser(res.Records, user)
			if stats {
				writeStats(cmd.ErrOrStderr(), path, res, len(records))
			}
			return writeRecords(cmd.OutOrStdout(), records, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tsv", "Output format: tsv, json or yaml")
	cmd.Flags().StringVar(&user, "user", chatlog.OverallUser, "Only records from this sender (Overall = all)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print grammar, layout and match counts to stderr")

	return cmd
}
