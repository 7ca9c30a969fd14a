package domain

import "time"

// Page is one infinite canvas. The camera is persisted with the page so a
// reopened canvas comes back where the user left it.
type Page struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CameraX    float64   `json:"cameraX"`
	CameraY    float64   `json:"cameraY"`
	CameraZoom float64   `json:"cameraZoom"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type PageStore interface {
	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	ListPages() ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
}
