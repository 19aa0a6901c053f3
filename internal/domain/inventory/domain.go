package inventory

import "context"

// Item is one physical entity reported by a device (chassis, module, port, PSU).
type Item struct {
	ID          int64  `json:"id"`
	DeviceID    int64  `json:"device_id"`
	Index       int    `json:"index"`
	Description string `json:"description"`
	Class       string `json:"class"`
	Name        string `json:"name"`
	Model       string `json:"model"`
	Serial      string `json:"serial"`
}

type Page struct {
	Total int     `json:"total"`
	Data  []*Item `json:"data"`
}

type Repo interface {
	// List returns one page of items and the total count across all pages.
	List(ctx context.Context, limit, offset int) ([]*Item, int, error)
}
