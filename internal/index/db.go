package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// TimeLayout is how message and transcript times are stored. Times are naive
// wall-clock values from the export, so no zone is kept.
const TimeLayout = "2006-01-02 15:04"

var ErrNotFound = errors.New("transcript not found")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS transcripts (
    transcript_key TEXT PRIMARY KEY,
    file_path      TEXT NOT NULL,
    title          TEXT NOT NULL DEFAULT '',
    grammar        TEXT NOT NULL DEFAULT '',
    layout         TEXT NOT NULL DEFAULT '',
    first_at       TEXT NOT NULL DEFAULT '',
    last_at        TEXT NOT NULL DEFAULT '',
    message_count  INTEGER NOT NULL DEFAULT 0,
    matches        INTEGER NOT NULL DEFAULT 0,
    dropped        INTEGER NOT NULL DEFAULT 0,
    mtime          INTEGER NOT NULL DEFAULT 0,
    size           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    transcript_key TEXT NOT NULL,
    msg_id         INTEGER NOT NULL,
    ts             TEXT NOT NULL,
    sender         TEXT NOT NULL,
    body           TEXT NOT NULL,
    only_date      TEXT NOT NULL,
    year           INTEGER NOT NULL,
    month_num      INTEGER NOT NULL,
    month_name     TEXT NOT NULL,
    day            INTEGER NOT NULL,
    day_name       TEXT NOT NULL,
    hour           INTEGER NOT NULL,
    minute         INTEGER NOT NULL,
    period         TEXT NOT NULL,
    line_number    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (transcript_key, msg_id)
);

CREATE INDEX IF NOT EXISTS messages_sender ON messages(transcript_key, sender);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    body,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, body) VALUES (new.rowid, new.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.rowid, old.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.rowid, old.body);
    INSERT INTO messages_fts(rowid, body) VALUES (new.rowid, new.body);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever transcript parsing changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	// force re-index by resetting all transcript mtime/size to 0
	if _, err := d.db.Exec("UPDATE transcripts SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type FileState struct {
	Mtime int64
	Size  int64
}

// GetFileState returns nil when the transcript has never been indexed.
func (d *DB) GetFileState(key string) (*FileState, error) {
	var st FileState
	err := d.db.QueryRow(
		"SELECT mtime, size FROM transcripts WHERE transcript_key = ?",
		key,
	).Scan(&st.Mtime, &st.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (d *DB) AllTranscriptKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT transcript_key FROM transcripts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteTranscript(key string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE transcript_key = ?", key); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM transcripts WHERE transcript_key = ?", key); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) TranscriptCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

type TranscriptRow struct {
	Key          string
	FilePath     string
	Title        string
	Grammar      string
	Layout       string
	FirstAt      string
	LastAt       string
	MessageCount int
	Matches      int
	Dropped      int
}

const transcriptColumns = "transcript_key, file_path, title, grammar, layout, first_at, last_at, message_count, matches, dropped"

func scanTranscript(sc interface{ Scan(...any) error }) (TranscriptRow, error) {
	var t TranscriptRow
	err := sc.Scan(&t.Key, &t.FilePath, &t.Title, &t.Grammar, &t.Layout,
		&t.FirstAt, &t.LastAt, &t.MessageCount, &t.Matches, &t.Dropped)
	return t, err
}

func (d *DB) GetTranscript(key string) (*TranscriptRow, error) {
	row := d.db.QueryRow("SELECT "+transcriptColumns+" FROM transcripts WHERE transcript_key = ?", key)
	t, err := scanTranscript(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TranscriptsWithDrops lists transcripts where some rows had unparseable
// timestamps, worst first.
func (d *DB) TranscriptsWithDrops() ([]TranscriptRow, error) {
	rows, err := d.db.Query("SELECT " + transcriptColumns + " FROM transcripts WHERE dropped > 0 ORDER BY dropped DESC, transcript_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TranscriptRow
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type MessageRow struct {
	TranscriptKey string
	MsgID         int
	Ts            string
	Sender        string
	Body          string
	OnlyDate      string
	Year          int
	MonthNum      int
	MonthName     string
	Day           int
	DayName       string
	Hour          int
	Minute        int
	Period        string
	LineNumber    int
}

const messageColumns = "transcript_key, msg_id, ts, sender, body, only_date, year, month_num, month_name, day, day_name, hour, minute, period, line_number"

func scanMessages(rows *sql.Rows) ([]MessageRow, error) {
	var out []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.TranscriptKey, &m.MsgID, &m.Ts, &m.Sender, &m.Body,
			&m.OnlyDate, &m.Year, &m.MonthNum, &m.MonthName, &m.Day, &m.DayName,
			&m.Hour, &m.Minute, &m.Period, &m.LineNumber); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) GetMessages(key string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE transcript_key = ? ORDER BY msg_id",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (d *DB) GetMessage(key string, msgID int) (*MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE transcript_key = ? AND msg_id = ?",
		key, msgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

// GetMessagesWindow returns up to context messages either side of hitMsgID.
// With no hit (hitMsgID < 0) the whole transcript is returned.
// startPos is the number of messages before the returned window.
func (d *DB) GetMessagesWindow(key string, hitMsgID, context int) (msgs []MessageRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE transcript_key = ?", key,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// msg_id is dense and 0-based per transcript, so it is the position
	hitPos := -1
	if hitMsgID >= 0 && hitMsgID < totalCount {
		hitPos = hitMsgID
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = max(hitPos-context, 0)
		endPos := min(hitPos+context+1, totalCount)
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE transcript_key = ? ORDER BY msg_id LIMIT ? OFFSET ?",
		key, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	msgs, err = scanMessages(rows)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	hitIdx = -1
	for i, m := range msgs {
		if m.MsgID == hitMsgID {
			hitIdx = i
		}
	}
	return msgs, hitIdx, startPos, totalCount, nil
}
