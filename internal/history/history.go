package history

import (
	"sync"
	"time"

	"haru-assistant/internal/dates"
	"haru-assistant/internal/llm"
)

// Interaction is one completed exchange. Immutable once appended; the
// display log keeps every entry, only the chat context window is
// bounded.
type Interaction struct {
	ID            int64
	Date          string
	Weekday       string
	Input         string
	Categories    []string
	Response      string
	AdvisoryLabel string
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[int64][]Interaction
	window   int
	nextID   int64
}

// NewManager creates a history manager whose chat context window spans
// the last `window` interactions.
func NewManager(window int) *Manager {
	if window <= 0 {
		window = 5
	}
	return &Manager{sessions: make(map[int64][]Interaction), window: window}
}

func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Append records a completed interaction, stamping id, date and weekday.
func (m *Manager) Append(userID int64, it Interaction) Interaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	it.ID = m.nextID
	if it.Date == "" {
		now := time.Now()
		it.Date = now.Format("2006-01-02")
		it.Weekday = dates.WeekdayLabel(now)
	}
	m.sessions[userID] = append(m.sessions[userID], it)
	return it
}

// All returns the full display log, oldest first.
func (m *Manager) All(userID int64) []Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	es := m.sessions[userID]
	out := make([]Interaction, len(es))
	copy(out, es)
	return out
}

// ContextTurns rebuilds the chat context from the last N interactions as
// alternating user/assistant turns. Derived on every call, never stored.
func (m *Manager) ContextTurns(userID int64) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	es := m.sessions[userID]
	if len(es) > m.window {
		es = es[len(es)-m.window:]
	}
	out := make([]llm.Message, 0, len(es)*2)
	for _, it := range es {
		out = append(out, llm.Message{Role: "user", Content: it.Input})
		out = append(out, llm.Message{Role: "assistant", Content: it.Response})
	}
	return out
}
