package storage

import (
	"fmt"
	"time"

	"infinicanvas/internal/domain"
)

// BoardStore implements domain.BoardStore using SQLite.
type BoardStore struct {
	db *DB
}

func NewBoardStore(db *DB) *BoardStore {
	return &BoardStore{db: db}
}

const boardColumns = `id, page_id, seq, x, y, width, height, prompt, aspect_ratio, quality, count, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(sc scanner, b *domain.Board) error {
	return sc.Scan(&b.ID, &b.PageID, &b.Seq, &b.X, &b.Y, &b.Width, &b.Height,
		&b.Prompt, &b.AspectRatio, &b.Quality, &b.Count, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

func (s *BoardStore) CreateBoard(b *domain.Board) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO boards (`+boardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.PageID, b.Seq, b.X, b.Y, b.Width, b.Height,
		b.Prompt, b.AspectRatio, b.Quality, b.Count, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *BoardStore) GetBoard(id string) (*domain.Board, error) {
	b := &domain.Board{}
	err := scanBoard(s.db.conn.QueryRow(`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id), b)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return b, nil
}

func (s *BoardStore) ListBoards(pageID string) ([]domain.Board, error) {
	rows, err := s.db.conn.Query(
		`SELECT `+boardColumns+` FROM boards WHERE page_id = ? ORDER BY seq ASC, created_at ASC`,
		pageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		var b domain.Board
		if err := scanBoard(rows, &b); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// NextSeq returns the sequence number for the next board on the page.
func (s *BoardStore) NextSeq(pageID string) (int64, error) {
	var seq int64
	err := s.db.conn.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM boards WHERE page_id = ?`, pageID).Scan(&seq)
	return seq, err
}

func (s *BoardStore) UpdateBoard(b *domain.Board) error {
	b.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE boards SET x = ?, y = ?, width = ?, height = ?, prompt = ?, aspect_ratio = ?, quality = ?, count = ?, status = ?, updated_at = ? WHERE id = ?`,
		b.X, b.Y, b.Width, b.Height, b.Prompt, b.AspectRatio, b.Quality, b.Count, b.Status, b.UpdatedAt, b.ID,
	)
	return err
}

func (s *BoardStore) DeleteBoard(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM boards WHERE id = ?`, id)
	return err
}

func (s *BoardStore) DeleteBoardsByPage(pageID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM boards WHERE page_id = ?`, pageID)
	return err
}
