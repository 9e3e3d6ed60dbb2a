package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const channelFile = "channel.json"

// Snowflake is a 64-bit Discord identifier. Exports write them as JSON strings,
// older ones as numbers; both decode.
type Snowflake int64

func (s *Snowflake) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	b = bytes.Trim(b, `"`)
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snowflake %q: %w", b, err)
	}
	*s = Snowflake(n)
	return nil
}

// Guild is the parent guild reference of a guild channel. Either field is nil
// when channel.json omits it.
type Guild struct {
	ID   *int64
	Name *string
}

// Channel is the metadata of one channel directory.
type Channel struct {
	ID         int64
	Type       int16
	Name       *string // from index.json, not channel.json
	Recipients []int64 // group DMs only
	Guild      *Guild

	Dir   string
	Label string
}

type channelDoc struct {
	ID         Snowflake   `json:"id"`
	Type       int16       `json:"type"`
	Recipients []Snowflake `json:"recipients"`
	Guild      *struct {
		ID   *Snowflake `json:"id"`
		Name *string    `json:"name"`
	} `json:"guild"`
}

// LoadChannel reads channel.json from dir and fills in the name from idx.
func LoadChannel(dir string, idx Index) (*Channel, error) {
	data, err := os.ReadFile(filepath.Join(dir, channelFile))
	if err != nil {
		return nil, fmt.Errorf("read channel: %w", err)
	}

	var doc channelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse channel %s: %w", dir, err)
	}

	ch := &Channel{
		ID:    int64(doc.ID),
		Type:  doc.Type,
		Dir:   dir,
		Label: filepath.Base(dir),
	}
	ch.Name = idx.Name(ch.ID)

	if doc.Recipients != nil {
		ch.Recipients = make([]int64, len(doc.Recipients))
		for i, r := range doc.Recipients {
			ch.Recipients[i] = int64(r)
		}
	}
	if doc.Guild != nil {
		ch.Guild = &Guild{Name: doc.Guild.Name}
		if doc.Guild.ID != nil {
			id := int64(*doc.Guild.ID)
			ch.Guild.ID = &id
		}
	}

	return ch, nil
}
