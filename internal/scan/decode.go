package scan

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode turns a raw export into text. A byte order mark selects UTF-8 or
// UTF-16 (either endianness) and is removed; without one the data is read as
// UTF-8. Windows line endings become "\n".
func Decode(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}
	return strings.ReplaceAll(string(out), "\r\n", "\n"), nil
}

// ReadTranscript reads and decodes one export file.
func ReadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(data)
}
