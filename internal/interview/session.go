package interview

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned for operations on an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCompleted is returned when an answer arrives for a session
	// whose question plan is already exhausted.
	ErrSessionCompleted = errors.New("session already completed")
)

// State tags the session lifecycle explicitly instead of deriving it from
// counters.
type State int

const (
	// StateCreated means the session exists but no question was asked yet.
	StateCreated State = iota
	// StateInProgress means at least one question was asked.
	StateInProgress
	// StateCompleted means the question plan is exhausted.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Question is a single asked question together with its routing metadata.
type Question struct {
	Text     string
	Metadata map[string]any
}

// Session accumulates one interview conversation's state. Answers[i] is the
// response to QuestionsAsked[i]; the two sequences differ in length by at
// most one (a question pending its answer).
type Session struct {
	ID             string
	Role           string
	State          State
	QuestionsAsked []Question
	Answers        []string
	CreatedAt      time.Time
	TurnCount      int
	ConfusionCount int
	OffTopicCount  int
	LastQuestion   string
}

// Store abstracts session persistence so backing storage is swappable and the
// orchestrator is testable without a live delegate. All mutations go through
// append/increment operations.
type Store interface {
	// Create initializes a fresh record for the id, overwriting any prior
	// state. Repeated creation with the same id deliberately restarts the
	// interview rather than failing.
	Create(id, role string) *Session
	Get(id string) (*Session, error)
	AppendQuestion(id, text string, metadata map[string]any) error
	AppendAnswer(id, text string) error
	IncrementTurn(id string) error
	IncrementConfusion(id string) error
	IncrementOffTopic(id string) error
	MarkCompleted(id string) error
	// End removes and returns the record.
	End(id string) (*Session, error)
}

// MemoryStore keeps sessions in process memory behind a mutex so concurrent
// requests touching the same session id do not corrupt state.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Create(id, role string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{
		ID:        id,
		Role:      role,
		State:     StateCreated,
		CreatedAt: time.Now(),
	}
	m.sessions[id] = session

	return snapshot(session)
}

// Get returns a copy of the record so callers cannot mutate stored state
// outside the store's lock.
func (m *MemoryStore) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return snapshot(session), nil
}

func (m *MemoryStore) AppendQuestion(id, text string, metadata map[string]any) error {
	return m.update(id, func(s *Session) {
		s.QuestionsAsked = append(s.QuestionsAsked, Question{Text: text, Metadata: metadata})
		s.LastQuestion = text
		if s.State == StateCreated {
			s.State = StateInProgress
		}
	})
}

func (m *MemoryStore) AppendAnswer(id, text string) error {
	return m.update(id, func(s *Session) {
		s.Answers = append(s.Answers, text)
	})
}

func (m *MemoryStore) IncrementTurn(id string) error {
	return m.update(id, func(s *Session) { s.TurnCount++ })
}

func (m *MemoryStore) IncrementConfusion(id string) error {
	return m.update(id, func(s *Session) { s.ConfusionCount++ })
}

func (m *MemoryStore) IncrementOffTopic(id string) error {
	return m.update(id, func(s *Session) { s.OffTopicCount++ })
}

func (m *MemoryStore) MarkCompleted(id string) error {
	return m.update(id, func(s *Session) { s.State = StateCompleted })
}

func (m *MemoryStore) End(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	delete(m.sessions, id)

	return session, nil
}

func (m *MemoryStore) update(id string, mutate func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	mutate(session)
	return nil
}

func snapshot(s *Session) *Session {
	copied := *s
	copied.QuestionsAsked = append([]Question(nil), s.QuestionsAsked...)
	copied.Answers = append([]string(nil), s.Answers...)
	return &copied
}
