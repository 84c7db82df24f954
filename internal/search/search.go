package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chatlog"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
)

type Result struct {
	TranscriptKey string
	MsgID         int // -1 for transcript-level rows from ListAll
	Ts            string
	Title         string
	Sender        string
	Snippet       string
	Rank          float64
}

type Options struct {
	Query      string
	Sender     string // "" or chatlog.OverallUser = everyone
	Since      string // "" = no filter, e.g. "2024-01-01"
	Transcript string // "" = all transcripts
	All        bool   // keep every hit instead of the best one per transcript
	Limit      int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 || len(lower) != len(text) {
		// no match, return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	if !opts.All {
		opts.Limit = origLimit * 3
	}

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}
	if opts.All {
		return results, nil
	}

	// Deduplicate: keep only the best-ranked result per transcript
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.TranscriptKey] {
			continue
		}
		seen[r.TranscriptKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters returns the WHERE conditions shared by both search paths.
func filters(opts Options) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if opts.Sender != "" && opts.Sender != chatlog.OverallUser {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.only_date >= ?")
		args = append(args, opts.Since)
	}
	if opts.Transcript != "" {
		conditions = append(conditions, "m.transcript_key = ?")
		args = append(args, opts.Transcript)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{opts.Query}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.transcript_key,
			m.msg_id,
			m.ts,
			t.title,
			m.sender,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN transcripts t ON m.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	// LIKE match for CJK substring search
	conditions := []string{"m.body LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.transcript_key,
			m.msg_id,
			m.ts,
			t.title,
			m.sender,
			m.body
		FROM messages m
		JOIN transcripts t ON m.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY m.ts DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var body string
		if err := rows.Scan(&r.TranscriptKey, &r.MsgID, &r.Ts, &r.Title, &r.Sender, &body); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(body, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.TranscriptKey, &r.MsgID, &r.Ts,
			&r.Title, &r.Sender,
			&r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns one row per transcript, most recently active first. A
// non-empty Query filters by title; Since filters on the last message date.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	var conditions []string
	var args []interface{}
	if opts.Query != "" {
		conditions = append(conditions, "title LIKE ?")
		args = append(args, "%"+opts.Query+"%")
	}
	if opts.Since != "" {
		conditions = append(conditions, "last_at >= ?")
		args = append(args, opts.Since)
	}

	query := "SELECT transcript_key, last_at, title, message_count, first_at FROM transcripts"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY last_at DESC, transcript_key"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var count int
		var firstAt string
		if err := rows.Scan(&r.TranscriptKey, &r.Ts, &r.Title, &count, &firstAt); err != nil {
			return nil, err
		}
		r.MsgID = -1
		r.Snippet = fmt.Sprintf("%d messages, %s to %s", count, firstAt, r.Ts)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Senders returns the user list of one transcript: OverallUser first, then
// the human senders sorted, group notifications left out.
func Senders(db *index.DB, transcriptKey string) ([]string, error) {
	rows, err := db.Raw().Query("SELECT DISTINCT sender FROM messages WHERE transcript_key = ?", transcriptKey)
	if err != nil {
		return nil, fmt.Errorf("senders query: %w", err)
	}
	defer rows.Close()

	var recs []chatlog.Record
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		recs = append(recs, chatlog.Record{Sender: s})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chatlog.Users(recs), nil
}
