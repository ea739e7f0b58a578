package model

type Asset struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Family      string `json:"family" db:"family"`
	Description string `json:"description" db:"description"`
	Tags        string `json:"tags" db:"tags"`
	Status      string `json:"status" db:"status"`
	VersionSeq  int    `json:"-" db:"version_seq"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
	UpdatedAt   int64  `json:"updated_at" db:"updated_at"`
}

// AssetDetail is the detail-endpoint shape: the asset row plus its
// versions and file records.
type AssetDetail struct {
	Asset
	Versions []Version `json:"versions"`
	Files    []File    `json:"files"`
}
