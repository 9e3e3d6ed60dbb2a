package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const indexFile = "index.json"

// Index maps a channel ID (decimal string) to its display name. Discord writes
// null for channels it could not name, which decodes to a nil entry.
type Index map[string]*string

// LoadIndex reads index.json from the messages directory of a package.
func LoadIndex(messagesDir string) (Index, error) {
	data, err := os.ReadFile(filepath.Join(messagesDir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	if idx == nil {
		idx = Index{}
	}
	return idx, nil
}

// Name returns the display name for a channel, or nil if the index has none.
func (idx Index) Name(channelID int64) *string {
	return idx[strconv.FormatInt(channelID, 10)]
}
