// Package memory keeps per-session chat history in process memory.
package memory

import (
	"sync"
	"time"

	"github.com/xzayogn/jobchat/internal/job"
)

const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Message is a single chat turn. JobData is set on assistant turns that
// carried listings, so the history can replay past search results.
type Message struct {
	User      string        `json:"user"`
	Message   string        `json:"message"`
	JobData   []job.Listing `json:"job_data,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Store holds chat histories keyed by session id. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string][]Message
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]Message)}
}

func (s *Store) AddUserMessage(sessionID, text string) {
	s.add(sessionID, Message{
		User:      RoleUser,
		Message:   text,
		Timestamp: time.Now(),
	})
}

func (s *Store) AddAIMessage(sessionID, text string, jobs []job.Listing) {
	s.add(sessionID, Message{
		User:      RoleAI,
		Message:   text,
		JobData:   jobs,
		Timestamp: time.Now(),
	})
}

func (s *Store) add(sessionID string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
}

// History returns a copy of the full conversation for a session. Unknown
// sessions yield an empty history.
func (s *Store) History(sessionID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[sessionID]
	out := make([]Message, len(history))
	copy(out, history)

	return out
}

// Recent returns up to limit of the latest messages, oldest first.
func (s *Store) Recent(sessionID string, limit int) []Message {
	history := s.History(sessionID)
	if limit <= 0 || len(history) <= limit {
		return history
	}

	return history[len(history)-limit:]
}

// Clear drops the history for a session. Clearing an unknown session is
// a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}
