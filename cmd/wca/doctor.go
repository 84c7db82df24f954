package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/config"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify export root, DB, FTS5, and show stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.OutOrStdout(), cfg)
		},
	}
}

func runDoctor(w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w, "=== Export Root ===")
	checkDir(w, "WhatsApp", cfg.ExportRoot)

	fmt.Fprintln(w, "\n=== File Scan ===")
	files, err := scan.ScanRoot(cfg.ExportRoot)
	if err != nil {
		fmt.Fprintf(w, "  scan error: %v\n", err)
	} else {
		fmt.Fprintf(w, "  Chat exports: %d\n", len(files))
	}

	fmt.Fprintln(w, "\n=== Database ===")
	fmt.Fprintf(w, "  Path: %s\n", cfg.DBPath)
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		fmt.Fprintln(w, "  Status: NOT FOUND (run 'wca index' first)")
		return nil
	}

	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	transcriptCount, err := db.TranscriptCount()
	if err != nil {
		return fmt.Errorf("count transcripts: %w", err)
	}
	messageCount, err := db.MessageCount()
	if err != nil {
		return fmt.Errorf("count messages: %w", err)
	}

	fmt.Fprintf(w, "  Chats:    %d\n", transcriptCount)
	fmt.Fprintf(w, "  Messages: %d\n", messageCount)

	fmt.Fprintln(w, "\n=== FTS5 ===")
	ftsCount, err := db.FTSCount()
	if err != nil {
		fmt.Fprintf(w, "  FTS5 error: %v\n", err)
	} else {
		fmt.Fprintf(w, "  FTS5 entries: %d\n", ftsCount)
		if ftsCount == messageCount {
			fmt.Fprintln(w, "  Status: OK (synced)")
		} else {
			fmt.Fprintf(w, "  Status: MISMATCH (messages=%d, fts=%d)\n", messageCount, ftsCount)
		}
	}

	fmt.Fprintln(w, "\n=== Unparsed Timestamps ===")
	drops, err := db.TranscriptsWithDrops()
	if err != nil {
		return fmt.Errorf("list drops: %w", err)
	}
	if len(drops) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, t := range drops {
		fmt.Fprintf(w, "  %s: %d of %d rows dropped (%s)\n", t.Title, t.Dropped, t.Matches, t.FilePath)
	}

	if info, err := os.Stat(cfg.DBPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		fmt.Fprintf(w, "\n=== DB Size: %.1f MB ===\n", sizeMB)
	}

	return nil
}

func checkDir(w io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Fprintf(w, "  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(w, "  %s: %s (OK)\n", name, path)
	}
}
