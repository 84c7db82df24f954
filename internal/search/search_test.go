package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chatlog"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *index.DB {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(root, 0o755))

	files := map[string]string{
		"WhatsApp Chat with Alice.txt": "1/1/24, 2:30 pm - Alice: pizza tonight?\n" +
			"1/1/24, 2:31 pm - Bob: pizza sounds great\n" +
			"3/1/24, 9:00 am - Alice: 我们去吃饭吧\n",
		"Family.txt": "10/02/2024, 18:00 - Mum: dinner at seven\n" +
			"10/02/2024, 18:05 - Dad: bring pizza\n" +
			"10/02/2024, 18:06 - Mum added Gran\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	db, err := index.OpenDB(filepath.Join(dir, "wca.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = index.IndexAll(db, root)
	require.NoError(t, err)
	return db
}

func TestSearch_DedupsPerTranscript(t *testing.T) {
	db := seed(t)

	results, err := Search(db, Options{Query: "pizza"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	keys := []string{results[0].TranscriptKey, results[1].TranscriptKey}
	assert.ElementsMatch(t, []string{"chat:WhatsApp Chat with Alice", "chat:Family"}, keys)
	for _, r := range results {
		assert.Contains(t, r.Snippet, ">>>pizza<<<")
	}
}

func TestSearch_AllKeepsEveryHit(t *testing.T) {
	db := seed(t)

	results, err := Search(db, Options{Query: "pizza", All: true})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_Filters(t *testing.T) {
	db := seed(t)

	results, err := Search(db, Options{Query: "pizza", Sender: "Bob", All: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Bob", results[0].Sender)
	assert.Equal(t, "Alice", results[0].Title)
	assert.Equal(t, 1, results[0].MsgID)
	assert.Equal(t, "2024-01-01 14:31", results[0].Ts)

	results, err = Search(db, Options{Query: "pizza", Since: "2024-02-01", All: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dad", results[0].Sender)

	results, err = Search(db, Options{Query: "pizza", Transcript: "chat:Family", Sender: chatlog.OverallUser, All: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearch_CJKUsesLike(t *testing.T) {
	db := seed(t)

	results, err := Search(db, Options{Query: "吃饭"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].Sender)
	assert.Contains(t, results[0].Snippet, ">>>吃饭<<<")
}

func TestListAll(t *testing.T) {
	db := seed(t)

	results, err := ListAll(db, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Family's last message (Feb) is newer than Alice's (Jan)
	assert.Equal(t, "Family", results[0].Title)
	assert.Equal(t, -1, results[0].MsgID)
	assert.Equal(t, "3 messages, 2024-02-10 18:00 to 2024-02-10 18:06", results[0].Snippet)

	results, err = ListAll(db, Options{Query: "ali"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].Title)
}

func TestSenders(t *testing.T) {
	db := seed(t)

	users, err := Senders(db, "chat:Family")
	require.NoError(t, err)
	assert.Equal(t, []string{chatlog.OverallUser, "Dad", "Mum"}, users)
}

func TestMakeSnippet(t *testing.T) {
	assert.Equal(t, "...de >>>fgh<<< ij...", makeSnippet("abcde fgh ijklm", "fgh", 3))
	assert.Equal(t, "short", makeSnippet("short", "zzz", 10))
	assert.Equal(t, ">>>Hello<<< world", makeSnippet("Hello world", "hello", 10))
}

func TestContainsCJK(t *testing.T) {
	assert.True(t, containsCJK("吃饭"))
	assert.False(t, containsCJK("pizza"))
}
