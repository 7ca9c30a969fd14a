package mcpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventEmitter allows the approval queue to notify UI clients.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

var (
	ErrRejected        = errors.New("action rejected by user")
	ErrApprovalTimeout = errors.New("approval timed out")
	ErrUnknownAction   = errors.New("unknown approval")
)

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. board IDs)
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool calls.
// It supports two modes:
//   - In-process (HTTP server hosting MCP): channels + emitted events
//   - DB-based (standalone stdio MCP): writes to mcp_approvals and polls,
//     while the HTTP server resolves rows from the UI
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]pendingEntry
	emitter EventEmitter
	timeout time.Duration
	poll    time.Duration
	db      *sql.DB
}

type pendingEntry struct {
	action PendingAction
	result chan bool
}

func NewApprovalQueue(emitter EventEmitter, timeout time.Duration) *ApprovalQueue {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ApprovalQueue{
		pending: make(map[string]pendingEntry),
		emitter: emitter,
		timeout: timeout,
		poll:    500 * time.Millisecond,
	}
}

// SetDB enables DB-based approval mode.
func (q *ApprovalQueue) SetDB(db *sql.DB) {
	q.db = db
}

// Request sends an approval request and blocks until approved, rejected,
// timed out or ctx is done. It returns nil only on approval.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description, metadata string) error {
	if metadata == "" {
		metadata = "{}"
	}
	action := PendingAction{
		ID:          uuid.New().String(),
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	}
	if q.db != nil {
		return q.requestViaDB(ctx, action)
	}
	return q.requestViaChannel(ctx, action)
}

// requestViaDB writes a pending approval to SQLite and polls until resolved.
func (q *ApprovalQueue) requestViaDB(ctx context.Context, a PendingAction) error {
	_, err := q.db.Exec(
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata, created_at) VALUES (?, ?, ?, 'pending', ?, ?)`,
		a.ID, a.Tool, a.Description, a.Metadata, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	defer q.db.Exec(`DELETE FROM mcp_approvals WHERE id = ?`, a.ID)

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var status string
			if err := q.db.QueryRow(`SELECT status FROM mcp_approvals WHERE id = ?`, a.ID).Scan(&status); err != nil {
				continue
			}
			switch status {
			case "approved":
				return nil
			case "rejected":
				return fmt.Errorf("%w: %s", ErrRejected, a.Tool)
			}
		case <-deadline.C:
			return fmt.Errorf("%w after %s: %s", ErrApprovalTimeout, q.timeout, a.Tool)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(ctx context.Context, a PendingAction) error {
	ch := make(chan bool, 1)

	q.mu.Lock()
	q.pending[a.ID] = pendingEntry{action: a, result: ch}
	q.mu.Unlock()
	defer q.cleanup(a.ID)

	q.emitter.Emit(ctx, EventApprovalRequired, a)

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case approved := <-ch:
		if !approved {
			return fmt.Errorf("%w: %s", ErrRejected, a.Tool)
		}
		return nil
	case <-timer.C:
		q.emitter.Emit(ctx, EventApprovalDismissed, map[string]string{"id": a.ID})
		return fmt.Errorf("%w after %s: %s", ErrApprovalTimeout, q.timeout, a.Tool)
	case <-ctx.Done():
		q.emitter.Emit(context.Background(), EventApprovalDismissed, map[string]string{"id": a.ID})
		return ctx.Err()
	}
}

// Pending lists the actions awaiting a decision.
func (q *ApprovalQueue) Pending() ([]PendingAction, error) {
	out := []PendingAction{}
	if q.db != nil {
		rows, err := q.db.Query(`SELECT id, tool, description, created_at, metadata FROM mcp_approvals WHERE status = 'pending' ORDER BY created_at ASC`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var a PendingAction
			var created time.Time
			if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &created, &a.Metadata); err != nil {
				return nil, err
			}
			a.CreatedAt = created.UTC().Format(time.RFC3339)
			out = append(out, a)
		}
		return out, rows.Err()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.pending {
		out = append(out, e.action)
	}
	return out, nil
}

// Approve marks a pending action as approved.
func (q *ApprovalQueue) Approve(actionID string) error {
	return q.resolve(actionID, true)
}

// Reject marks a pending action as rejected.
func (q *ApprovalQueue) Reject(actionID string) error {
	return q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) error {
	if q.db != nil {
		status := "rejected"
		if approved {
			status = "approved"
		}
		res, err := q.db.Exec(`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = 'pending'`, status, actionID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownAction, actionID)
		}
		return nil
	}

	q.mu.Lock()
	e, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, actionID)
	}
	select {
	case e.result <- approved:
	default:
	}
	return nil
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
