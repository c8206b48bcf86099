package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteArchive appends session progress updates and messages to a sqlite
// database. Rows are only ever inserted; the archive is an append-only audit
// trail for the GUI's session history view.
type SQLiteArchive struct {
	db *sql.DB
}

// OpenSQLiteArchive opens or creates the archive database at path and ensures
// its schema exists. Use ":memory:" for an ephemeral archive in tests.
func OpenSQLiteArchive(ctx context.Context, path string) (*SQLiteArchive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive database: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS task_progress (
    session_id TEXT NOT NULL,
    markdown_content TEXT NOT NULL,
    timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_progress_session ON task_progress(session_id);
CREATE TABLE IF NOT EXISTS user_messages (
    session_id TEXT NOT NULL,
    message TEXT NOT NULL,
    message_type TEXT NOT NULL,
    timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_messages_session ON user_messages(session_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure archive schema: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

func (a *SQLiteArchive) RecordProgress(sessionID string, progress TaskProgress) error {
	_, err := a.db.Exec(
		`INSERT INTO task_progress (session_id, markdown_content, timestamp) VALUES (?, ?, ?)`,
		sessionID, progress.MarkdownContent, progress.Timestamp)
	if err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	return nil
}

func (a *SQLiteArchive) RecordMessage(sessionID string, message UserMessage) error {
	_, err := a.db.Exec(
		`INSERT INTO user_messages (session_id, message, message_type, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, message.Message, string(message.MessageType), message.Timestamp)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	return nil
}

// MessageCount reports how many messages a session has archived. Used by the
// history view and by tests.
func (a *SQLiteArchive) MessageCount(sessionID string) (int, error) {
	var count int
	err := a.db.QueryRow(
		`SELECT COUNT(*) FROM user_messages WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// ProgressHistory returns a session's archived progress documents oldest
// first.
func (a *SQLiteArchive) ProgressHistory(sessionID string) ([]TaskProgress, error) {
	rows, err := a.db.Query(
		`SELECT markdown_content, timestamp FROM task_progress WHERE session_id = ? ORDER BY timestamp`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("load progress history: %w", err)
	}
	defer rows.Close()

	var history []TaskProgress
	for rows.Next() {
		var entry TaskProgress
		if err := rows.Scan(&entry.MarkdownContent, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
