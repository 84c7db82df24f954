package scan

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "WhatsApp Chat with Alice.txt"), []byte("a"))
	writeFile(t, filepath.Join(root, "family", "Group.TXT"), []byte("bb"))
	writeFile(t, filepath.Join(root, "family", "photo.jpg"), []byte("x"))
	writeFile(t, filepath.Join(root, ".trash", "old.txt"), []byte("x"))

	files, err := ScanRoot(root)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.NotZero(t, f.Mtime)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{
		filepath.Join(root, "WhatsApp Chat with Alice.txt"),
		filepath.Join(root, "family", "Group.TXT"),
	}, paths)
}

func TestScanRoot_Missing(t *testing.T) {
	files, err := ScanRoot(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = ScanRoot("")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestTranscriptKey(t *testing.T) {
	root := filepath.Join("/home", "me", "WhatsApp")
	assert.Equal(t, "chat:family/Group", TranscriptKey(root, filepath.Join(root, "family", "Group.txt")))
	assert.Equal(t, "chat:WhatsApp Chat with Alice", TranscriptKey(root, filepath.Join(root, "WhatsApp Chat with Alice.txt")))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Alice", Title("/x/WhatsApp Chat with Alice.txt"))
	assert.Equal(t, "Group", Title("/x/Group.txt"))
	assert.Equal(t, "WhatsApp Chat with ", Title("/x/WhatsApp Chat with .txt"))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain utf8", []byte("1/1/24, 2:30 pm - A: hé\n"), "1/1/24, 2:30 pm - A: hé\n"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...), "hi"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi"},
		{"crlf", []byte("a\r\nb\r\n"), "a\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	writeFile(t, path, []byte("\xEF\xBB\xBF1/1/24, 2:30 pm - A: hi\r\n"))

	text, err := ReadTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, "1/1/24, 2:30 pm - A: hi\n", text)

	_, err = ReadTranscript(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
