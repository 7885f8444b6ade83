package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codefionn/werkbank/internal/logger"
)

// Workspace is a project directory the GUI has opened.
type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	CreatedAt string `json:"createdAt"`
}

// Conversation groups messages within a workspace.
type Conversation struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Title       string `json:"title"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Message is one chat entry, including optional model reasoning.
type Message struct {
	ID               string `json:"id"`
	ConversationID   string `json:"conversationId"`
	Role             string `json:"role"`
	Content          string `json:"content"`
	Thinking         string `json:"thinking,omitempty"`
	ThinkingDuration int64  `json:"thinkingDuration,omitempty"`
	Timestamp        string `json:"timestamp"`
}

// UpdateCheck records one update probe; the newest row gates how often
// the checker goes to the network.
type UpdateCheck struct {
	ID            int64  `json:"id"`
	CheckedAt     string `json:"checkedAt"`
	LatestVersion string `json:"latestVersion"`
	Notified      bool   `json:"notified"`
}

// Store wraps the SQLite database holding conversations and update
// checks.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("store: opened %s", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workspaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		title TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (workspace_id) REFERENCES workspaces(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		thinking TEXT,
		thinking_duration INTEGER DEFAULT 0,
		timestamp TEXT NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS update_checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		checked_at TEXT NOT NULL,
		latest_version TEXT,
		notified BOOLEAN NOT NULL DEFAULT FALSE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CreateWorkspace inserts a new workspace record.
func (s *Store) CreateWorkspace(name, path string) (*Workspace, error) {
	ws := &Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		CreatedAt: nowISO(),
	}

	_, err := s.db.Exec(
		`INSERT INTO workspaces (id, name, path, created_at) VALUES (?, ?, ?, ?)`,
		ws.ID, ws.Name, ws.Path, ws.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// Workspaces returns all workspaces, oldest first.
func (s *Store) Workspaces() ([]Workspace, error) {
	rows, err := s.db.Query(`SELECT id, name, path, created_at FROM workspaces ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Path, &ws.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

// DeleteWorkspace removes a workspace; conversations and messages
// cascade.
func (s *Store) DeleteWorkspace(id string) error {
	_, err := s.db.Exec(`DELETE FROM workspaces WHERE id = ?`, id)
	return err
}

// CreateConversation inserts a conversation under a workspace.
func (s *Store) CreateConversation(workspaceID, title string) (*Conversation, error) {
	now := nowISO()
	conv := &Conversation{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Title:       title,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(
		`INSERT INTO conversations (id, workspace_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.WorkspaceID, conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Conversations returns the conversations of a workspace, most recently
// updated first.
func (s *Store) Conversations(workspaceID string) ([]Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, workspace_id, title, created_at, updated_at
		 FROM conversations WHERE workspace_id = ? ORDER BY updated_at DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateConversationTitle renames a conversation and bumps updated_at.
func (s *Store) UpdateConversationTitle(id, title string) error {
	_, err := s.db.Exec(
		`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, nowISO(), id,
	)
	return err
}

// DeleteConversation removes a conversation; messages cascade.
func (s *Store) DeleteConversation(id string) error {
	_, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	return err
}

// CreateMessage appends a message and bumps the conversation's
// updated_at. The caller may supply the ID and timestamp; missing values
// are filled in.
func (s *Store) CreateMessage(msg Message) (*Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == "" {
		msg.Timestamp = nowISO()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO messages (id, conversation_id, role, content, thinking, thinking_duration, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Thinking, msg.ThinkingDuration, msg.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		nowISO(), msg.ConversationID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Messages returns a conversation's messages in insertion order.
func (s *Store) Messages(conversationID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, role, content, COALESCE(thinking, ''), COALESCE(thinking_duration, 0), timestamp
		 FROM messages WHERE conversation_id = ? ORDER BY timestamp, id`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Thinking, &m.ThinkingDuration, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecordUpdateCheck stores the result of an update probe.
func (s *Store) RecordUpdateCheck(latestVersion string) error {
	_, err := s.db.Exec(
		`INSERT INTO update_checks (checked_at, latest_version) VALUES (?, ?)`,
		nowISO(), latestVersion,
	)
	return err
}

// LastUpdateCheck returns the most recent update check, or nil when none
// has been recorded yet.
func (s *Store) LastUpdateCheck() (*UpdateCheck, error) {
	row := s.db.QueryRow(
		`SELECT id, checked_at, COALESCE(latest_version, ''), notified
		 FROM update_checks ORDER BY id DESC LIMIT 1`,
	)

	var uc UpdateCheck
	if err := row.Scan(&uc.ID, &uc.CheckedAt, &uc.LatestVersion, &uc.Notified); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &uc, nil
}
