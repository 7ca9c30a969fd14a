package storage

import (
	"fmt"
	"time"

	"infinicanvas/internal/domain"
)

// PageStore implements domain.PageStore using SQLite.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

func (s *PageStore) CreatePage(p *domain.Page) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.CameraZoom == 0 {
		p.CameraZoom = 1
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO pages (id, name, camera_x, camera_y, camera_zoom, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.CameraX, p.CameraY, p.CameraZoom, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PageStore) GetPage(id string) (*domain.Page, error) {
	p := &domain.Page{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, camera_x, camera_y, camera_zoom, created_at, updated_at FROM pages WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CameraX, &p.CameraY, &p.CameraZoom, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

func (s *PageStore) ListPages() ([]domain.Page, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, camera_x, camera_y, camera_zoom, created_at, updated_at FROM pages ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID, &p.Name, &p.CameraX, &p.CameraY, &p.CameraZoom, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *PageStore) UpdatePage(p *domain.Page) error {
	p.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE pages SET name = ?, camera_x = ?, camera_y = ?, camera_zoom = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.CameraX, p.CameraY, p.CameraZoom, p.UpdatedAt, p.ID,
	)
	return err
}

func (s *PageStore) DeletePage(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM pages WHERE id = ?`, id)
	return err
}
