package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/search"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *index.DB {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "WhatsApp Chat with Alice.txt"),
		[]byte("1/1/24, 2:30 pm - Alice added Bob\n1/1/24, 2:31 pm - Bob: pizza\ntonight?\n"), 0o644))

	db, err := index.OpenDB(filepath.Join(dir, "wca.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = index.IndexAll(db, root)
	require.NoError(t, err)
	return db
}

func TestSelectionText(t *testing.T) {
	db := seed(t)

	got, err := selectionText(db, search.Result{TranscriptKey: "chat:WhatsApp Chat with Alice", MsgID: 1})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 14:31 Bob: pizza\ntonight?", got)

	got, err = selectionText(db, search.Result{TranscriptKey: "chat:WhatsApp Chat with Alice", MsgID: 0})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 14:30 SYSTEM: Alice added Bob", got)

	got, err = selectionText(db, search.Result{TranscriptKey: "chat:WhatsApp Chat with Alice", MsgID: -1})
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp Chat with Alice.txt", filepath.Base(got))

	_, err = selectionText(db, search.Result{TranscriptKey: "chat:WhatsApp Chat with Alice", MsgID: 9})
	assert.ErrorContains(t, err, "message not found")

	_, err = selectionText(db, search.Result{TranscriptKey: "chat:nope", MsgID: -1})
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one ...", firstLine("one\ntwo"))
	assert.Equal(t, "one", firstLine("one"))
}

func TestFormatResultLine(t *testing.T) {
	r := search.Result{Title: "Alice", Ts: "2024-01-27 14:05", Sender: "group_notification", Snippet: "a >>>pizza<<<\tnight"}

	lines := formatResultLine(r, 40, true)
	require.Len(t, lines, linesPerItem)
	assert.Contains(t, lines[0], "Alice")
	assert.Contains(t, lines[0], "01-27")
	assert.Contains(t, lines[0], "SYSTEM")
	assert.Contains(t, lines[1], "a pizza night")
	assert.NotContains(t, lines[1], ">>>")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
	assert.Equal(t, "", truncate("ab", 0))
	assert.Equal(t, "你", truncate("你好", 3))
}

func TestAdjustListScroll(t *testing.T) {
	m := model{cursor: 7}
	m.adjustListScroll(6) // three items visible
	assert.Equal(t, 5, m.listOffset)

	m.cursor = 2
	m.adjustListScroll(6)
	assert.Equal(t, 2, m.listOffset)
}

func TestUpdate_DropsStaleSearchResults(t *testing.T) {
	m := newModel(nil, modeSearch, "pizza", search.Options{})

	next, _ := m.Update(searchResultMsg{query: "pi", results: []search.Result{{Title: "stale"}}})
	assert.Empty(t, next.(model).results)

	next, _ = m.Update(searchResultMsg{query: "pizza", results: []search.Result{{TranscriptKey: "chat:a", MsgID: 2}}})
	fm := next.(model)
	require.Len(t, fm.results, 1)
	assert.Equal(t, 0, fm.cursor)
}

func TestPreviewCacheKey(t *testing.T) {
	assert.Equal(t, "chat:Family:3", previewCacheKey("chat:Family", 3))
	assert.Equal(t, "chat:Family:-1", previewCacheKey("chat:Family", -1))
}

func TestShortHelp(t *testing.T) {
	assert.Equal(t, "up/C-k/dn/C-j navigate | C-u/C-d preview | enter copy | esc quit", keys.shortHelp())
}

func TestUpdate_FirstAndLast(t *testing.T) {
	m := newModel(nil, modeList, "", search.Options{})
	m.results = []search.Result{{MsgID: -1}, {MsgID: -1}, {MsgID: -1}}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m = next.(model)
	assert.Equal(t, 2, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, next.(model).cursor)
}
