// Package session tracks per-session agent state: the current task progress
// document and the stream of user-facing messages. State lives in memory for
// the lifetime of the server; an optional sqlite archive keeps a durable copy
// for auditing.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/geminigui/toolhost/internal/logging"
)

// MessageType classifies a user-facing message.
type MessageType string

const (
	MessageInfo    MessageType = "info"
	MessageSuccess MessageType = "success"
	MessageWarning MessageType = "warning"
	MessageError   MessageType = "error"
)

// ParseMessageType validates a wire-level message type string.
func ParseMessageType(value string) (MessageType, error) {
	switch MessageType(strings.ToLower(strings.TrimSpace(value))) {
	case MessageInfo:
		return MessageInfo, nil
	case MessageSuccess:
		return MessageSuccess, nil
	case MessageWarning:
		return MessageWarning, nil
	case MessageError:
		return MessageError, nil
	default:
		return "", fmt.Errorf("invalid message type: %q", value)
	}
}

// TaskProgress is the latest progress document for a session.
type TaskProgress struct {
	MarkdownContent string `json:"markdown_content"`
	Timestamp       int64  `json:"timestamp"`
}

// UserMessage is one entry in a session's message stream.
type UserMessage struct {
	Message     string      `json:"message"`
	MessageType MessageType `json:"message_type"`
	Timestamp   int64       `json:"timestamp"`
}

// Archive receives a durable copy of every state change. Implementations must
// be safe for concurrent use.
type Archive interface {
	RecordProgress(sessionID string, progress TaskProgress) error
	RecordMessage(sessionID string, message UserMessage) error
	Close() error
}

// Manager holds the in-memory session state. All methods are safe for
// concurrent use. Archive failures are logged but never fail the in-memory
// update; the GUI keeps working even if the audit trail is broken.
type Manager struct {
	mu       sync.Mutex
	progress map[string]TaskProgress
	messages map[string][]UserMessage

	archive Archive
	log     logging.Logger
	now     func() time.Time
}

// NewManager creates a Manager. archive may be nil to disable archiving.
func NewManager(archive Archive, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard{}
	}
	return &Manager{
		progress: make(map[string]TaskProgress),
		messages: make(map[string][]UserMessage),
		archive:  archive,
		log:      log,
		now:      time.Now,
	}
}

// UpdateTaskProgress replaces the session's progress document.
func (m *Manager) UpdateTaskProgress(sessionID, markdownContent string) TaskProgress {
	progress := TaskProgress{
		MarkdownContent: markdownContent,
		Timestamp:       m.now().UnixMilli(),
	}

	m.mu.Lock()
	m.progress[sessionID] = progress
	m.mu.Unlock()

	if m.archive != nil {
		if err := m.archive.RecordProgress(sessionID, progress); err != nil {
			m.log.Warn("archive progress failed", logging.F("session", sessionID), logging.F("error", err))
		}
	}
	return progress
}

// TaskProgress returns the session's current progress document, if any.
func (m *Manager) TaskProgress(sessionID string) (TaskProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	progress, ok := m.progress[sessionID]
	return progress, ok
}

// SendUserMessage appends a message to the session's stream.
func (m *Manager) SendUserMessage(sessionID, message string, messageType MessageType) UserMessage {
	entry := UserMessage{
		Message:     message,
		MessageType: messageType,
		Timestamp:   m.now().UnixMilli(),
	}

	m.mu.Lock()
	m.messages[sessionID] = append(m.messages[sessionID], entry)
	m.mu.Unlock()

	if m.archive != nil {
		if err := m.archive.RecordMessage(sessionID, entry); err != nil {
			m.log.Warn("archive message failed", logging.F("session", sessionID), logging.F("error", err))
		}
	}
	return entry
}

// UserMessages returns a copy of the session's message stream in send order.
func (m *Manager) UserMessages(sessionID string) []UserMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UserMessage(nil), m.messages[sessionID]...)
}

// ClearSession drops all in-memory state for a session. Archived rows are
// kept; the archive is an audit trail, not a cache.
func (m *Manager) ClearSession(sessionID string) {
	m.mu.Lock()
	delete(m.progress, sessionID)
	delete(m.messages, sessionID)
	m.mu.Unlock()
}
