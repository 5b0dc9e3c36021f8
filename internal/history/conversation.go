package history

// Turn roles. The transcript only ever contains these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a conversation transcript.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ConversationStore keeps the per-conversation transcript used as model
// completion context and as the corpus for report generation. Oldest turns
// are evicted once the cap is exceeded.
type ConversationStore struct {
	turns *Store[Turn]
}

// NewConversationStore creates a ConversationStore capped at cap turns per
// conversation key.
func NewConversationStore(cap int) *ConversationStore {
	return &ConversationStore{turns: NewStore[Turn](cap, Tail)}
}

// Append pushes a turn at the end of the transcript, evicting from the front
// when over cap.
func (s *ConversationStore) Append(key, role, text string) {
	s.turns.Append(key, Turn{Role: role, Text: text})
}

// Get returns the transcript for key in chronological order, empty if unseen.
func (s *ConversationStore) Get(key string) []Turn {
	return s.turns.Items(key)
}

// Len reports the transcript length for key.
func (s *ConversationStore) Len(key string) int {
	return s.turns.Len(key)
}

// Clear drops the transcript for key. Triggered by an explicit user request
// to reset context.
func (s *ConversationStore) Clear(key string) {
	s.turns.Clear(key)
}

// Warm backfills an empty transcript from the persistence mirror. A key that
// already has turns is left untouched; the in-process store stays the source
// of truth while the process is warm.
func (s *ConversationStore) Warm(key string, turns []Turn) {
	if s.turns.Len(key) > 0 {
		return
	}
	s.turns.Replace(key, turns)
}
