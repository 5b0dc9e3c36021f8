package history

import "time"

// FileEntry records one observed file attachment event.
type FileEntry struct {
	MessageID  string    `json:"message_id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Sender     string    `json:"sender"`
	ObservedAt time.Time `json:"observed_at"`
}

// FileCache keeps the newest file attachments per conversation. Entries are
// never deduplicated: resending the same file is a distinct event.
type FileCache struct {
	files *Store[FileEntry]
}

// NewFileCache creates a FileCache capped at cap entries per key.
func NewFileCache(cap int) *FileCache {
	return &FileCache{files: NewStore[FileEntry](cap, Head)}
}

// Record inserts entry at the head unconditionally, evicting the oldest
// entry past the cap.
func (c *FileCache) Record(key string, entry FileEntry) {
	c.files.Append(key, entry)
}

// List returns entries newest-first. Grouping by type for display is the
// caller's concern.
func (c *FileCache) List(key string) []FileEntry {
	return c.files.Items(key)
}

// Len reports the number of cached entries for key.
func (c *FileCache) Len(key string) int {
	return c.files.Len(key)
}

// Backfill replaces the cached list for key with entries reconstructed from
// the message history, newest-first.
func (c *FileCache) Backfill(key string, entries []FileEntry) {
	c.files.Replace(key, entries)
}
