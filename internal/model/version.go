package model

import "encoding/json"

type Version struct {
	ID            int64           `json:"-" db:"id"`
	AssetID       string          `json:"asset_id" db:"asset_id"`
	Version       int             `json:"version" db:"version"`
	Metadata      json.RawMessage `json:"metadata" db:"metadata_json"`
	ThumbnailPath string          `json:"thumbnail_path" db:"thumbnail_path"`
	Archived      int             `json:"archived" db:"archived"`
	CreatedAt     int64           `json:"created_at" db:"created_at"`
	UpdatedAt     int64           `json:"updated_at" db:"updated_at"`
}
