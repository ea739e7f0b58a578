package service

import (
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"asset-server/internal/family"
	"asset-server/internal/model"
	appErr "asset-server/internal/pkg/errors"
	"asset-server/internal/repo"
	"asset-server/internal/storage"
)

type FileService struct {
	assets   *repo.AssetRepo
	versions *repo.VersionRepo
	files    *repo.FileRepo
	changes  *repo.ChangeRepo
	store    storage.Store
}

func NewFileService(assets *repo.AssetRepo, versions *repo.VersionRepo, files *repo.FileRepo, changes *repo.ChangeRepo, store storage.Store) *FileService {
	return &FileService{assets: assets, versions: versions, files: files, changes: changes, store: store}
}

// Upload stores one file under an already-published version and records the
// file row. The extension must be allowed for the asset's family.
func (s *FileService) Upload(ctx context.Context, assetID string, version int, filename string, r io.Reader, size int64) (*model.File, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.versions.Get(ctx, assetID, version); err != nil {
		return nil, err
	}
	filename = filepath.Base(filename)
	if filename == "" || filename == "." || filename == ".." {
		return nil, appErr.ErrInvalid
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !family.AllowsExtension(asset.Family, ext) {
		return nil, appErr.ErrBadFormat
	}
	key := storage.FileKey(assetID, version, filename)
	written, err := s.store.Save(ctx, key, r, size)
	if err != nil {
		return nil, err
	}
	file := &model.File{
		AssetID:   assetID,
		Version:   version,
		Filename:  filename,
		RelPath:   key,
		Format:    strings.TrimPrefix(ext, "."),
		SizeBytes: written,
	}
	if err := s.files.Add(ctx, file); err != nil {
		return nil, err
	}
	payload, _ := json.Marshal(map[string]interface{}{"version": version, "filename": filename})
	if err := s.changes.Append(ctx, &model.Change{ChangeType: model.ChangeFileAdded, AssetID: assetID, Payload: payload}); err != nil {
		logutil.GetLogger(ctx).Warn("append change failed", zap.String("asset_id", assetID), zap.Error(err))
	}
	return file, nil
}

// ResolveDownload picks the first file of the version matching format;
// an empty format matches any file.
func (s *FileService) ResolveDownload(ctx context.Context, assetID string, version int, format string) (*model.File, error) {
	if _, err := s.assets.GetByID(ctx, assetID); err != nil {
		return nil, err
	}
	files, err := s.files.ListByVersion(ctx, assetID, version)
	if err != nil {
		return nil, err
	}
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	for i := range files {
		if format == "" || files[i].Format == format {
			return &files[i], nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *FileService) OpenFile(ctx context.Context, file *model.File) (io.ReadCloser, error) {
	return s.store.Open(ctx, file.RelPath)
}

// CheckVersion verifies the asset and version rows exist.
func (s *FileService) CheckVersion(ctx context.Context, assetID string, version int) error {
	if _, err := s.assets.GetByID(ctx, assetID); err != nil {
		return err
	}
	_, err := s.versions.Get(ctx, assetID, version)
	return err
}

type packageMetadata struct {
	Asset   packageAsset `json:"asset"`
	Version int          `json:"version"`
}

type packageAsset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Family      string `json:"family"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Status      string `json:"status"`
}

// WritePackage streams a zip of all version files plus a metadata.json
// entry. Files missing from storage are skipped rather than failing the
// whole archive.
func (s *FileService) WritePackage(ctx context.Context, assetID string, version int, w io.Writer) error {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	files, err := s.files.ListByVersion(ctx, assetID, version)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	meta := packageMetadata{
		Asset: packageAsset{
			ID:          asset.ID,
			Name:        asset.Name,
			Family:      asset.Family,
			Description: asset.Description,
			Tags:        asset.Tags,
			Status:      asset.Status,
		},
		Version: version,
	}
	metaEntry, err := zw.Create("metadata.json")
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if _, err := metaEntry.Write(encoded); err != nil {
		return err
	}

	for _, file := range files {
		src, err := s.store.Open(ctx, file.RelPath)
		if err != nil {
			logutil.GetLogger(ctx).Warn("package file missing from storage",
				zap.String("asset_id", assetID), zap.String("rel_path", file.RelPath), zap.Error(err))
			continue
		}
		entry, err := zw.Create("files/" + file.Filename)
		if err != nil {
			_ = src.Close()
			return err
		}
		if _, err := io.Copy(entry, src); err != nil {
			_ = src.Close()
			return err
		}
		_ = src.Close()
	}
	return zw.Close()
}

func (s *FileService) SaveThumbnail(ctx context.Context, assetID string, version int, r io.Reader, size int64) (string, error) {
	if _, err := s.versions.Get(ctx, assetID, version); err != nil {
		return "", err
	}
	key := storage.ThumbKey(assetID, version)
	if _, err := s.store.Save(ctx, key, r, size); err != nil {
		return "", err
	}
	if err := s.versions.SetThumbnail(ctx, assetID, version, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *FileService) OpenThumbnail(ctx context.Context, assetID string, version int) (io.ReadCloser, error) {
	v, err := s.versions.Get(ctx, assetID, version)
	if err != nil {
		return nil, err
	}
	if v.ThumbnailPath == "" {
		return nil, appErr.ErrNotFound
	}
	return s.store.Open(ctx, v.ThumbnailPath)
}
