package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/frontdesk/internal/domain"
)

// ChatGreeting seeds every new chat session.
const ChatGreeting = "Namaste! How can I help you today?"

// ChatRole is the author of a chat log entry.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ErrInvalidMessage is returned when a chat log entry has an unknown role or
// no content.
var ErrInvalidMessage = errors.New("invalid chat message")

// ChatMessage is one entry of a chat session.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatPatient is the patient summary attached to a session once intake
// finishes.
type ChatPatient struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Age    int           `json:"age"`
	Gender domain.Gender `json:"gender"`
}

// ChatSession is a stored conversation transcript.
type ChatSession struct {
	ID        string        `json:"id"`
	Patient   *ChatPatient  `json:"patient"`
	StartedAt time.Time     `json:"sessionStart"`
	EndedAt   *time.Time    `json:"sessionEnd,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

// ChatLog records kiosk conversations in SQLite for audit.
type ChatLog struct {
	db  *DB
	now func() time.Time
}

// NewChatLog creates a chat log using the given database.
func NewChatLog(db *DB) *ChatLog {
	return &ChatLog{db: db, now: time.Now}
}

func (l *ChatLog) stamp() string {
	return l.now().UTC().Format(time.DateTime)
}

// CreateSession starts a new session seeded with the assistant greeting.
func (l *ChatLog) CreateSession(ctx context.Context) (*ChatSession, error) {
	id := uuid.New().String()
	ts := l.stamp()

	tx, err := l.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, started_at) VALUES (?, ?)`, id, ts,
	); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("creating chat session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		id, RoleAssistant, ChatGreeting, ts,
	); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("seeding chat session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create session: %w", err)
	}

	l.db.log.Debug().Str("session", id).Msg("chat session created")
	return l.GetSession(ctx, id)
}

// AppendMessage adds an entry to an existing session and returns the
// updated transcript.
func (l *ChatLog) AppendMessage(ctx context.Context, id string, role ChatRole, content string) (*ChatSession, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidMessage, role)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidMessage)
	}
	if err := l.exists(ctx, id); err != nil {
		return nil, err
	}

	if _, err := l.db.sql.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		id, role, content, l.stamp(),
	); err != nil {
		return nil, fmt.Errorf("appending chat message: %w", err)
	}
	return l.GetSession(ctx, id)
}

// AttachPatient records the patient profile and links it to the session.
func (l *ChatLog) AttachPatient(ctx context.Context, id string, p domain.PatientProfile) error {
	if err := l.exists(ctx, id); err != nil {
		return err
	}

	patientID := uuid.New().String()
	tx, err := l.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attach patient: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO patients (id, name, age, gender, created_at) VALUES (?, ?, ?, ?, ?)`,
		patientID, p.Name, p.Age, p.Gender, l.stamp(),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("inserting patient: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE chat_sessions SET patient_id = ? WHERE id = ?`, patientID, id,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("linking patient: %w", err)
	}
	return tx.Commit()
}

// EndSession stamps the session end time. Ending an ended session keeps the
// first end time.
func (l *ChatLog) EndSession(ctx context.Context, id string) (*ChatSession, error) {
	if err := l.exists(ctx, id); err != nil {
		return nil, err
	}
	if _, err := l.db.sql.ExecContext(ctx,
		`UPDATE chat_sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`, l.stamp(), id,
	); err != nil {
		return nil, fmt.Errorf("ending chat session: %w", err)
	}
	return l.GetSession(ctx, id)
}

// GetSession returns a session with its patient summary and messages.
func (l *ChatLog) GetSession(ctx context.Context, id string) (*ChatSession, error) {
	var (
		sess                    ChatSession
		startedAt               string
		endedAt                 sql.NullString
		patientID, name, gender sql.NullString
		age                     sql.NullInt64
	)
	err := l.db.sql.QueryRowContext(ctx,
		`SELECT s.id, s.started_at, s.ended_at, p.id, p.name, p.age, p.gender
		 FROM chat_sessions s LEFT JOIN patients p ON p.id = s.patient_id
		 WHERE s.id = ?`, id,
	).Scan(&sess.ID, &startedAt, &endedAt, &patientID, &name, &age, &gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading chat session: %w", err)
	}

	sess.StartedAt, _ = time.Parse(time.DateTime, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.DateTime, endedAt.String)
		sess.EndedAt = &t
	}
	if patientID.Valid {
		sess.Patient = &ChatPatient{
			ID:     patientID.String,
			Name:   name.String,
			Age:    int(age.Int64),
			Gender: domain.Gender(gender.String),
		}
	}

	msgs, err := l.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Messages = msgs
	return &sess, nil
}

// CountSessions returns the number of stored sessions and how many are
// still open.
func (l *ChatLog) CountSessions(ctx context.Context) (total, open int, err error) {
	err = l.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) - COUNT(ended_at) FROM chat_sessions`,
	).Scan(&total, &open)
	if err != nil {
		return 0, 0, fmt.Errorf("counting chat sessions: %w", err)
	}
	return total, open, nil
}

func (l *ChatLog) exists(ctx context.Context, id string) error {
	var n int
	if err := l.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_sessions WHERE id = ?`, id,
	).Scan(&n); err != nil {
		return fmt.Errorf("checking chat session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (l *ChatLog) loadMessages(ctx context.Context, id string) ([]ChatMessage, error) {
	rows, err := l.db.sql.QueryContext(ctx,
		`SELECT role, content, timestamp FROM chat_messages WHERE session_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading chat messages: %w", err)
	}
	defer rows.Close()

	msgs := []ChatMessage{}
	for rows.Next() {
		var m ChatMessage
		var ts string
		if err := rows.Scan(&m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.Timestamp, _ = time.Parse(time.DateTime, ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
