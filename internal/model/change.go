package model

import "encoding/json"

// Change types written to the change feed; the sync agent keys off these.
const (
	ChangeAssetUpsert      = "asset_upsert"
	ChangeAssetUpdate      = "asset_update"
	ChangeAssetDeleted     = "asset_deleted"
	ChangeVersionPublished = "version_published"
	ChangeVersionArchived  = "version_archived"
	ChangeVersionDeleted   = "version_deleted"
	ChangeFileAdded        = "file_added"
	ChangeComment          = "comment"
)

type Change struct {
	ID         int64           `json:"id" db:"id"`
	ChangeType string          `json:"change_type" db:"change_type"`
	AssetID    string          `json:"asset_id" db:"asset_id"`
	Payload    json.RawMessage `json:"payload" db:"payload_json"`
	CreatedAt  int64           `json:"created_at" db:"created_at"`
}
