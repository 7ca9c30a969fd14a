package storage

import (
	"fmt"
	"time"

	"infinicanvas/internal/domain"
)

// AssetStore implements domain.AssetStore using SQLite.
type AssetStore struct {
	db *DB
}

func NewAssetStore(db *DB) *AssetStore {
	return &AssetStore{db: db}
}

const assetColumns = `a.id, a.board_id, a.idx, a.x, a.y, a.width, a.height, a.seed, a.status, a.url, a.error, a.generation_id, a.metadata_json, a.created_at, a.updated_at`

func scanAsset(sc scanner, a *domain.Asset) error {
	return sc.Scan(&a.ID, &a.BoardID, &a.Index, &a.X, &a.Y, &a.Width, &a.Height, &a.Seed,
		&a.Status, &a.URL, &a.Error, &a.GenerationID, &a.MetadataJSON, &a.CreatedAt, &a.UpdatedAt)
}

func (s *AssetStore) CreateAsset(a *domain.Asset) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.MetadataJSON == "" {
		a.MetadataJSON = "{}"
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO assets (id, board_id, idx, x, y, width, height, seed, status, url, error, generation_id, metadata_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.BoardID, a.Index, a.X, a.Y, a.Width, a.Height, a.Seed,
		a.Status, a.URL, a.Error, a.GenerationID, a.MetadataJSON, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (s *AssetStore) GetAsset(id string) (*domain.Asset, error) {
	a := &domain.Asset{}
	err := scanAsset(s.db.conn.QueryRow(`SELECT `+assetColumns+` FROM assets a WHERE a.id = ?`, id), a)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

func (s *AssetStore) ListAssets(boardID string) ([]domain.Asset, error) {
	return s.list(`SELECT `+assetColumns+` FROM assets a WHERE a.board_id = ? ORDER BY a.idx ASC`, boardID)
}

func (s *AssetStore) ListAssetsByPage(pageID string) ([]domain.Asset, error) {
	return s.list(
		`SELECT `+assetColumns+` FROM assets a JOIN boards b ON b.id = a.board_id WHERE b.page_id = ? ORDER BY b.seq ASC, a.idx ASC`,
		pageID,
	)
}

// ListAssetsByStatus returns assets in the given state last touched before
// the cutoff, oldest first.
func (s *AssetStore) ListAssetsByStatus(status domain.AssetStatus, before time.Time) ([]domain.Asset, error) {
	return s.list(
		`SELECT `+assetColumns+` FROM assets a WHERE a.status = ? AND a.updated_at < ? ORDER BY a.updated_at ASC`,
		status, before,
	)
}

func (s *AssetStore) list(query string, args ...any) ([]domain.Asset, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := scanAsset(rows, &a); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *AssetStore) UpdateAsset(a *domain.Asset) error {
	a.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE assets SET x = ?, y = ?, width = ?, height = ?, status = ?, url = ?, error = ?, generation_id = ?, metadata_json = ?, updated_at = ? WHERE id = ?`,
		a.X, a.Y, a.Width, a.Height, a.Status, a.URL, a.Error, a.GenerationID, a.MetadataJSON, a.UpdatedAt, a.ID,
	)
	return err
}

func (s *AssetStore) DeleteAssetsByBoard(boardID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM assets WHERE board_id = ?`, boardID)
	return err
}
