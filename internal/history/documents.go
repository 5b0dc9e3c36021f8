package history

import "time"

// DocumentEntry records a document discussed in a conversation.
type DocumentEntry struct {
	DocID       string    `json:"doc_id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	LastTouched time.Time `json:"last_touched"`
}

// DocumentCache keeps the most-recently-used documents per conversation,
// deduplicated by document id.
type DocumentCache struct {
	docs *Store[DocumentEntry]
}

// NewDocumentCache creates a DocumentCache capped at cap entries per key.
func NewDocumentCache(cap int) *DocumentCache {
	return &DocumentCache{docs: NewStore[DocumentEntry](cap, Head)}
}

// Touch records an analysis of docID. A repeat touch replaces the stored
// title/summary and moves the entry to the MRU position; overflow evicts
// from the LRU end.
func (c *DocumentCache) Touch(key, docID, title, summary string) {
	entry := DocumentEntry{
		DocID:       docID,
		Title:       title,
		Summary:     summary,
		LastTouched: time.Now(),
	}
	c.docs.Upsert(key, func(e DocumentEntry) bool { return e.DocID == docID }, entry)
}

// List returns entries MRU-first. A re-touched old document jumps to the
// front regardless of when it was first seen, so callers must not read the
// order as strictly time-sorted.
func (c *DocumentCache) List(key string) []DocumentEntry {
	return c.docs.Items(key)
}

// Clear drops all document entries for key.
func (c *DocumentCache) Clear(key string) {
	c.docs.Clear(key)
}
