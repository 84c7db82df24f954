package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, content string) *index.DB {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "WhatsApp Chat with Alice.txt"), []byte(content), 0o644))

	db, err := index.OpenDB(filepath.Join(dir, "wca.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = index.IndexAll(db, root)
	require.NoError(t, err)
	return db
}

func TestRenderConversation(t *testing.T) {
	db := seed(t, "1/1/24, 2:30 pm - Alice created group \"Trip\"\n"+
		"1/1/24, 2:31 pm - Alice: where to?\n"+
		"1/1/24, 2:32 pm - Bob: the beach\nwith snacks\n"+
		"1/1/24, 2:33 pm - Alice: ok\n")

	out, hitLine, err := RenderConversation(db, "chat:WhatsApp Chat with Alice", Options{HitMsgID: 2, Context: 1, Query: "beach"})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, hitLine, 0)
	assert.Contains(t, lines[hitLine], ">> Bob > 2024-01-01 14:32 Monday <<")
	assert.Contains(t, out, "Alice [12h, 4 messages]")
	assert.Contains(t, out, "(1 messages before)")
	assert.NotContains(t, out, "messages after")
	assert.Contains(t, out, colorBoldRed+"beach"+colorReset)
	assert.Contains(t, out, "  with snacks")
	assert.NotContains(t, out, "created group")
}

func TestRenderConversation_SystemLabel(t *testing.T) {
	db := seed(t, "1/1/24, 2:30 pm - Alice created group \"Trip\"\n1/1/24, 2:31 pm - Alice: hi\n")

	out, hitLine, err := RenderConversation(db, "chat:WhatsApp Chat with Alice", Options{HitMsgID: -1, Context: -1})
	require.NoError(t, err)
	assert.Equal(t, -1, hitLine)
	assert.Contains(t, out, "SYSTEM >")
	assert.Contains(t, out, "created group")
}

func TestRenderConversation_Missing(t *testing.T) {
	db := seed(t, "1/1/24, 2:30 pm - Alice: hi\n")
	_, _, err := RenderConversation(db, "chat:nope", Options{})
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Pizza and pasta", "pizza AND pasta")
	assert.Equal(t, colorBoldRed+"Pizza"+colorReset+" and "+colorBoldRed+"pasta"+colorReset, got)
	assert.Equal(t, "plain", highlightKeywords("plain", ""))
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"abcdefg"}, wrapLine("abcdefg", 0))
	assert.Equal(t, []string{""}, wrapLine("", 5))
	// escape codes take no columns
	assert.Equal(t, []string{"\033[1mab\033[0m"}, wrapLine("\033[1mab\033[0m", 2))
	// wide runes count double
	assert.Equal(t, []string{"你", "好"}, wrapLine("你好", 3))
}

func TestSenderLabelAndColor(t *testing.T) {
	assert.Equal(t, "SYSTEM", SenderLabel("group_notification"))
	assert.Equal(t, "Alice", SenderLabel("Alice"))
	assert.Equal(t, colorSystem, senderColor("group_notification"))
	assert.Equal(t, senderColor("Alice"), senderColor("Alice"))
}
