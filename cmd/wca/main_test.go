package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chatlog"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/config"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleChat = "12/25/19, 9:15 pm - Messages are end-to-end encrypted.\n" +
	"12/25/19, 9:16 pm - Alice: hello there\n" +
	"12/25/19, 9:17 pm - Bob: line one\nline two\n" +
	"12/25/19, 9:18 pm - Alice: <Media omitted>\n"

func writeChat(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runWCA executes the root command with an isolated home and config.
func runWCA(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WCA_CONFIG", filepath.Join(home, "missing.toml"))

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseCmd_TSV(t *testing.T) {
	path := writeChat(t, t.TempDir(), "chat.txt", sampleChat)

	out, _, err := runWCA(t, "parse", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "date\tsender\tday_name\tperiod\tline\tbody", lines[0])
	assert.Equal(t, "2019-12-25 21:16\tAlice\tWednesday\t21-22\t2\thello there", lines[2])
	assert.Equal(t, "2019-12-25 21:17\tBob\tWednesday\t21-22\t3\tline one line two", lines[3])
}

func TestParseCmd_JSONWithUserAndStats(t *testing.T) {
	path := writeChat(t, t.TempDir(), "chat.txt", sampleChat)

	out, errOut, err := runWCA(t, "parse", path, "--format", "json", "--user", "Alice", "--stats")
	require.NoError(t, err)

	var records []chatlog.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "hello there", records[0].Body)
	assert.True(t, records[1].IsMedia())

	assert.Contains(t, errOut, "grammar:  12h")
	assert.Contains(t, errOut, "matches:  4")
	assert.Contains(t, errOut, "shown:    2")
	assert.Contains(t, errOut, "media:    1")
	assert.Contains(t, errOut, "senders:  2")
}

func TestParseCmd_YAML(t *testing.T) {
	path := writeChat(t, t.TempDir(), "chat.txt", sampleChat)

	out, _, err := runWCA(t, "parse", path, "-f", "yaml")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 4)
	assert.Equal(t, chatlog.GroupNotification, records[0]["sender"])
	assert.Equal(t, "December", records[1]["month"])
}

func TestParseCmd_Errors(t *testing.T) {
	dir := t.TempDir()

	path := writeChat(t, dir, "empty.txt", "no timestamps here\n")
	_, _, err := runWCA(t, "parse", path)
	assert.ErrorIs(t, err, chatlog.ErrNoMessages)

	path = writeChat(t, dir, "chat.txt", sampleChat)
	_, _, err = runWCA(t, "parse", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = runWCA(t, "parse", filepath.Join(dir, "nope.txt"))
	assert.Error(t, err)
}

func TestWriteRecords_EmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecords(&buf, nil, "json"))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteResultsTSV(t *testing.T) {
	var buf bytes.Buffer
	writeResultsTSV(&buf, []search.Result{{
		TranscriptKey: "chat:Family",
		MsgID:         3,
		Ts:            "2024-02-10 18:05",
		Title:         "Family",
		Sender:        chatlog.GroupNotification,
		Snippet:       "bring >>>pizza<<<\ntoo",
	}})

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	require.Len(t, fields, 6)
	assert.Equal(t, "chat:Family", fields[0])
	assert.Equal(t, "3", fields[1])
	assert.Contains(t, fields[4], "SYSTEM")
	assert.Equal(t, "bring "+sColorBoldRed+"pizza"+sColorReset+" too", fields[5])
}

func TestRunDoctor(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeChat(t, root, "WhatsApp Chat with Alice.txt", sampleChat)
	writeChat(t, root, "Broken.txt", "1/1/24, 2:30 pm - A: ok\n13/13/24, 2:31 pm - B: bad\n")

	c := &config.Config{ExportRoot: root, DBPath: filepath.Join(dir, "wca.db")}

	var buf bytes.Buffer
	require.NoError(t, runDoctor(&buf, c))
	assert.Contains(t, buf.String(), "NOT FOUND (run 'wca index' first)")

	db, err := index.OpenDB(c.DBPath)
	require.NoError(t, err)
	_, err = index.IndexAll(db, root)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	buf.Reset()
	require.NoError(t, runDoctor(&buf, c))
	out := buf.String()
	assert.Contains(t, out, "Chat exports: 2")
	assert.Contains(t, out, "Chats:    2")
	assert.Contains(t, out, "Status: OK (synced)")
	assert.Contains(t, out, "Broken: 1 of 2 rows dropped")
}
