package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	messagesFile = "messages.csv"
	headerMarker = "ID"
)

// Message is one parsed row of messages.csv.
type Message struct {
	ID      int64
	Date    time.Time
	Content string
}

// MessageReader streams the messages of one channel. It is forward-only.
type MessageReader struct {
	f   *os.File
	csv *csv.Reader
}

// OpenMessages opens the channel's messages.csv for reading.
func (c *Channel) OpenMessages() (*MessageReader, error) {
	f, err := os.Open(filepath.Join(c.Dir, messagesFile))
	if err != nil {
		return nil, fmt.Errorf("open messages: %w", err)
	}
	return &MessageReader{f: f, csv: newCSVReader(f)}, nil
}

// Next returns the next message, or io.EOF when the file is exhausted. Any row
// whose first field is "ID" is treated as the header and skipped, wherever it
// appears.
func (r *MessageReader) Next() (Message, error) {
	for {
		rec, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Message{}, io.EOF
			}
			return Message{}, fmt.Errorf("read %s: %w", r.f.Name(), err)
		}
		if isHeader(rec) {
			continue
		}
		return parseRow(rec)
	}
}

// Close releases the underlying file.
func (r *MessageReader) Close() error {
	return r.f.Close()
}

// CountMessages counts the data rows of the channel's messages.csv without
// parsing them. It applies the same header rule as Next.
func (c *Channel) CountMessages() (int, error) {
	f, err := os.Open(filepath.Join(c.Dir, messagesFile))
	if err != nil {
		return 0, fmt.Errorf("open messages: %w", err)
	}
	defer f.Close()

	reader := newCSVReader(f)
	reader.ReuseRecord = true

	n := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", f.Name(), err)
		}
		if !isHeader(rec) {
			n++
		}
	}
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && rec[0] == headerMarker
}

const rowFields = 4

// parseRow converts ID,Timestamp,Contents,Attachments. Attachments are dropped.
func parseRow(rec []string) (Message, error) {
	if len(rec) != rowFields {
		return Message{}, fmt.Errorf("malformed row: want %d fields, got %d", rowFields, len(rec))
	}

	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("parse message id %q: %w", rec[0], err)
	}
	date, err := ParseTimestamp(rec[1])
	if err != nil {
		return Message{}, fmt.Errorf("message %d: %w", id, err)
	}

	return Message{ID: id, Date: date, Content: rec[2]}, nil
}
