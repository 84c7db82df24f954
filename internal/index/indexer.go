package index

import (
	"errors"
	"fmt"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chatlog"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
	"github.com/rs/zerolog/log"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Empty   int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d empty=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Empty, s.Pruned, s.Errors)
}

// IndexAll brings the database in line with the exports under root: new or
// changed files are parsed and stored, unchanged ones skipped, vanished ones
// pruned. A file that fails is logged and counted, never fatal.
func IndexAll(db *DB, root string) (Stats, error) {
	var stats Stats

	files, err := scan.ScanRoot(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := scan.TranscriptKey(root, fi.Path)
		logger := log.With().Str("file", fi.Path).Logger()

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			// the file still exists, so its indexed rows must survive pruning
			seenKeys[key] = struct{}{}
			stats.Errors++
			logger.Warn().Err(err).Msg("read index state")
			continue
		}
		if !needs {
			seenKeys[key] = struct{}{}
			stats.Skipped++
			continue
		}

		text, err := scan.ReadTranscript(fi.Path)
		if err != nil {
			seenKeys[key] = struct{}{}
			stats.Errors++
			logger.Warn().Err(err).Msg("read transcript")
			continue
		}

		res, err := chatlog.Parse(text)
		if err != nil {
			if errors.Is(err, chatlog.ErrNoMessages) {
				stats.Empty++
				logger.Warn().Msg("no chat messages recognized, skipping")
			} else {
				stats.Errors++
				logger.Warn().Err(err).Msg("parse transcript")
			}
			continue
		}
		if res.Dropped > 0 {
			logger.Debug().Int("dropped", res.Dropped).Int("matches", res.Matches).
				Msg("rows with unparseable timestamps dropped")
		}

		seenKeys[key] = struct{}{}
		t := transcript{
			key:   key,
			path:  fi.Path,
			title: scan.Title(fi.Path),
			mtime: fi.Mtime,
			size:  fi.Size,
		}
		if err := indexTranscript(db, t, res); err != nil {
			stats.Errors++
			logger.Warn().Err(err).Msg("index transcript")
			continue
		}
		stats.Updated++
	}

	// prune transcripts whose files no longer exist
	pruned, err := pruneTranscripts(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

type transcript struct {
	key   string
	path  string
	title string
	mtime int64
	size  int64
}

func needsUpdate(db *DB, key string, mtime, size int64) (bool, error) {
	st, err := db.GetFileState(key)
	if err != nil {
		return false, err
	}
	if st == nil {
		return true, nil // new transcript
	}
	return st.Mtime != mtime || st.Size != size, nil
}

func indexTranscript(db *DB, t transcript, res chatlog.Result) error {
	// delete old data first
	if err := db.DeleteTranscript(t.key); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var firstAt, lastAt string
	if n := len(res.Records); n > 0 {
		firstAt = res.Records[0].Date.Format(TimeLayout)
		lastAt = res.Records[0].Date.Format(TimeLayout)
		// exports are not guaranteed to be in order
		for _, r := range res.Records[1:] {
			ts := r.Date.Format(TimeLayout)
			firstAt = min(firstAt, ts)
			lastAt = max(lastAt, ts)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO transcripts (transcript_key, file_path, title, grammar, layout, first_at, last_at, message_count, matches, dropped, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.key, t.path, t.title,
		res.Grammar.String(), res.Layout,
		firstAt, lastAt,
		len(res.Records), res.Matches, res.Dropped,
		t.mtime, t.size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (` + messageColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range res.Records {
		_, err := stmt.Exec(
			t.key, i,
			r.Date.Format(TimeLayout),
			r.Sender, r.Body,
			r.OnlyDate, r.Year, r.MonthNum, r.MonthName,
			r.Day, r.DayName, r.Hour, r.Minute, r.Period,
			r.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneTranscripts(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllTranscriptKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteTranscript(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
