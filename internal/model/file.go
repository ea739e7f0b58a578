package model

type File struct {
	ID        int64  `json:"-" db:"id"`
	AssetID   string `json:"asset_id" db:"asset_id"`
	Version   int    `json:"version" db:"version"`
	Filename  string `json:"filename" db:"filename"`
	RelPath   string `json:"rel_path" db:"rel_path"`
	Format    string `json:"format" db:"format"`
	SizeBytes int64  `json:"size_bytes" db:"size_bytes"`
}
