package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxLineBytes bounds a single feed record; venue records are well under
// this.
const maxLineBytes = 1 << 20

// ReadFile loads a line-delimited JSON update file into memory.
func ReadFile(path string) ([]Update, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close()
	updates, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return updates, nil
}

// Read decodes one update per line, skipping blank lines.
func Read(r io.Reader) ([]Update, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var updates []Update
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var u Update
		if err := json.Unmarshal(text, &u); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		updates = append(updates, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return updates, nil
}
