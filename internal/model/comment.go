package model

type Comment struct {
	ID        int64  `json:"id" db:"id"`
	AssetID   string `json:"asset_id" db:"asset_id"`
	Author    string `json:"author" db:"author"`
	Body      string `json:"body" db:"body"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
