package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// idList stores recipient IDs as a JSON array, since SQLite has no array type.
type idList []int64

func (l idList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]int64(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *idList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("scan recipients: unsupported type %T", src)
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return fmt.Errorf("scan recipients: %w", err)
	}
	*l = ids
	return nil
}

const naiveLayout = "2006-01-02 15:04:05"

// naiveTime stores a timestamp as "YYYY-MM-DD HH:MM:SS" text with no offset,
// matching the TIMESTAMP WITHOUT TIME ZONE column on Postgres.
type naiveTime time.Time

func (t naiveTime) Value() (driver.Value, error) {
	return time.Time(t).Format(naiveLayout), nil
}

func (t *naiveTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		// The driver parses DATETIME columns itself; keep the wall clock.
		*t = naiveTime(time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), 0, time.UTC))
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("scan date: unsupported type %T", src)
}

func (t *naiveTime) parse(s string) error {
	parsed, err := time.Parse(naiveLayout, s)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	*t = naiveTime(parsed)
	return nil
}

type sqliteMessage struct {
	ChannelID   int64     `gorm:"column:channel_id"`
	ChannelType int16     `gorm:"column:channel_type"`
	ChannelName *string   `gorm:"column:channel_name"`
	GuildID     *int64    `gorm:"column:guild_id"`
	GuildName   *string   `gorm:"column:guild_name"`
	Recipients  idList    `gorm:"column:recipients;type:text"`
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement:false"`
	Date        naiveTime `gorm:"column:date;type:datetime"`
	Content     string    `gorm:"column:content"`
}

func (sqliteMessage) TableName() string { return "messages" }

func (m sqliteMessage) row() MessageRow {
	return MessageRow{
		ChannelID:   m.ChannelID,
		ChannelType: m.ChannelType,
		ChannelName: m.ChannelName,
		GuildID:     m.GuildID,
		GuildName:   m.GuildName,
		Recipients:  []int64(m.Recipients),
		ID:          m.ID,
		Date:        time.Time(m.Date),
		Content:     m.Content,
	}
}

// SQLite writes messages to an embedded database file.
type SQLite struct {
	db       *gorm.DB
	conflict clause.OnConflict
}

// NewSQLite opens (or creates) the SQLite file at path.
func NewSQLite(path string, policy ConflictPolicy) (*SQLite, error) {
	conflict := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}}
	switch policy {
	case ConflictUpdateName:
		conflict.DoUpdates = clause.AssignmentColumns([]string{"channel_name"})
	case ConflictIgnore:
		conflict.DoNothing = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConflictPolicy, policy)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLite{db: db, conflict: conflict}, nil
}

func (s *SQLite) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	m := s.db.WithContext(ctx).Migrator()
	if m.HasTable(&sqliteMessage{}) {
		return nil
	}
	if err := m.CreateTable(&sqliteMessage{}); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (s *SQLite) Begin(ctx context.Context) (Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin tx: %w", tx.Error)
	}
	return &sqliteTx{tx: tx, conflict: s.conflict}, nil
}

func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&sqliteMessage{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// Messages returns every stored message ordered by ID.
func (s *SQLite) Messages(ctx context.Context) ([]MessageRow, error) {
	var stored []sqliteMessage
	if err := s.db.WithContext(ctx).Order("id").Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	rows := make([]MessageRow, len(stored))
	for i, m := range stored {
		rows[i] = m.row()
	}
	return rows, nil
}

type sqliteTx struct {
	tx       *gorm.DB
	conflict clause.OnConflict
}

func (t *sqliteTx) Upsert(ctx context.Context, m MessageRow) error {
	rec := sqliteMessage{
		ChannelID:   m.ChannelID,
		ChannelType: m.ChannelType,
		ChannelName: m.ChannelName,
		GuildID:     m.GuildID,
		GuildName:   m.GuildName,
		Recipients:  idList(m.Recipients),
		ID:          m.ID,
		Date:        naiveTime(m.Date),
		Content:     m.Content,
	}
	if err := t.tx.WithContext(ctx).Clauses(t.conflict).Create(&rec).Error; err != nil {
		return fmt.Errorf("upsert message %d: %w", m.ID, err)
	}
	return nil
}

func (t *sqliteTx) Commit(context.Context) error {
	if err := t.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback(context.Context) error {
	return t.tx.Rollback().Error
}
