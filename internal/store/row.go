package store

import (
	"time"

	"github.com/slice/discord-package-exporter/internal/export"
)

// MessageRow is one row of the messages table. Channel and guild columns are a
// snapshot of the channel at export time.
type MessageRow struct {
	ChannelID   int64
	ChannelType int16
	ChannelName *string
	GuildID     *int64
	GuildName   *string
	Recipients  []int64
	ID          int64
	Date        time.Time
	Content     string
}

// NewMessageRow denormalizes a parsed message with its channel's metadata.
func NewMessageRow(ch *export.Channel, m export.Message) MessageRow {
	row := MessageRow{
		ChannelID:   ch.ID,
		ChannelType: ch.Type,
		ChannelName: ch.Name,
		Recipients:  ch.Recipients,
		ID:          m.ID,
		Date:        m.Date,
		Content:     m.Content,
	}
	if ch.Guild != nil {
		row.GuildID = ch.Guild.ID
		row.GuildName = ch.Guild.Name
	}
	return row
}
