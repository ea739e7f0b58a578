package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"asset-server/internal/family"
	"asset-server/internal/model"
	appErr "asset-server/internal/pkg/errors"
	"asset-server/internal/repo"
	"asset-server/internal/storage"
)

type AssetService struct {
	assets   *repo.AssetRepo
	versions *repo.VersionRepo
	files    *repo.FileRepo
	comments *repo.CommentRepo
	changes  *repo.ChangeRepo
	store    storage.Store
}

func NewAssetService(assets *repo.AssetRepo, versions *repo.VersionRepo, files *repo.FileRepo, comments *repo.CommentRepo, changes *repo.ChangeRepo, store storage.Store) *AssetService {
	return &AssetService{
		assets:   assets,
		versions: versions,
		files:    files,
		comments: comments,
		changes:  changes,
		store:    store,
	}
}

type UpsertAssetInput struct {
	ID          string
	Name        string
	Family      string
	Description string
	Tags        string
}

func (s *AssetService) Upsert(ctx context.Context, in UpsertAssetInput) (*model.Asset, error) {
	if in.ID == "" {
		return nil, appErr.ErrInvalid
	}
	if in.Name == "" {
		in.Name = in.ID
	}
	in.Family = strings.ToLower(in.Family)
	if _, ok := family.Get(in.Family); !ok {
		return nil, appErr.ErrBadFamily
	}
	asset := &model.Asset{
		ID:          in.ID,
		Name:        in.Name,
		Family:      in.Family,
		Description: in.Description,
		Tags:        in.Tags,
	}
	if err := s.assets.Upsert(ctx, asset); err != nil {
		return nil, err
	}
	s.logChange(ctx, model.ChangeAssetUpsert, in.ID, map[string]interface{}{"name": in.Name, "family": in.Family})
	return s.assets.GetByID(ctx, in.ID)
}

// Publish allocates the next version number for the asset and records the
// version row. Version numbers are server-assigned and never reused.
func (s *AssetService) Publish(ctx context.Context, assetID string, metadata json.RawMessage) (*model.Version, error) {
	if assetID == "" {
		return nil, appErr.ErrInvalid
	}
	number, err := s.assets.NextVersion(ctx, assetID)
	if err != nil {
		return nil, err
	}
	version := &model.Version{
		AssetID:  assetID,
		Version:  number,
		Metadata: metadata,
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return nil, err
	}
	s.logChange(ctx, model.ChangeVersionPublished, assetID, map[string]interface{}{"version": number})
	return version, nil
}

func (s *AssetService) List(ctx context.Context, familyFilter, statusFilter string, limit, offset uint) ([]model.Asset, error) {
	if limit == 0 || limit > 500 {
		limit = 50
	}
	return s.assets.List(ctx, familyFilter, statusFilter, limit, offset)
}

func (s *AssetService) Get(ctx context.Context, assetID string) (*model.AssetDetail, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return &model.AssetDetail{Asset: *asset, Versions: versions, Files: files}, nil
}

var updatableAssetFields = map[string]bool{
	"name":        true,
	"description": true,
	"tags":        true,
	"status":      true,
}

func (s *AssetService) Update(ctx context.Context, assetID string, fields map[string]interface{}) error {
	filtered := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if updatableAssetFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if err := s.assets.UpdateFields(ctx, assetID, filtered); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeAssetUpdate, assetID, filtered)
	return nil
}

func (s *AssetService) SetStatus(ctx context.Context, assetID, status string) error {
	if status == "" {
		status = "published"
	}
	return s.Update(ctx, assetID, map[string]interface{}{"status": status})
}

func (s *AssetService) AddComment(ctx context.Context, assetID, author, body string) error {
	if _, err := s.assets.GetByID(ctx, assetID); err != nil {
		return err
	}
	if author == "" {
		author = "anonymous"
	}
	if err := s.comments.Add(ctx, &model.Comment{AssetID: assetID, Author: author, Body: body}); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeComment, assetID, map[string]interface{}{"author": author})
	return nil
}

func (s *AssetService) Comments(ctx context.Context, assetID string) ([]model.Comment, error) {
	return s.comments.ListByAsset(ctx, assetID)
}

func (s *AssetService) ArchiveVersion(ctx context.Context, assetID string, version int) error {
	if err := s.versions.Archive(ctx, assetID, version); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeVersionArchived, assetID, map[string]interface{}{"version": version})
	return nil
}

// DeleteVersion removes one version: its stored files, thumbnail and rows.
// Other versions of the asset are untouched. Storage removal is best-effort
// so a half-missing directory cannot block the row delete.
func (s *AssetService) DeleteVersion(ctx context.Context, assetID string, version int) error {
	if _, err := s.versions.Get(ctx, assetID, version); err != nil {
		return err
	}
	if err := s.store.DeletePrefix(ctx, storage.VersionPrefix(assetID, version)); err != nil {
		logutil.GetLogger(ctx).Warn("delete version storage failed",
			zap.String("asset_id", assetID), zap.Int("version", version), zap.Error(err))
	}
	if err := s.store.Delete(ctx, storage.ThumbKey(assetID, version)); err != nil {
		logutil.GetLogger(ctx).Warn("delete version thumbnail failed",
			zap.String("asset_id", assetID), zap.Int("version", version), zap.Error(err))
	}
	if err := s.files.DeleteByVersion(ctx, assetID, version); err != nil {
		return err
	}
	if err := s.versions.Delete(ctx, assetID, version); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeVersionDeleted, assetID, map[string]interface{}{"version": version})
	return nil
}

// Delete removes the asset and everything attached to it.
func (s *AssetService) Delete(ctx context.Context, assetID string) error {
	if _, err := s.assets.GetByID(ctx, assetID); err != nil {
		return err
	}
	if err := s.store.DeletePrefix(ctx, storage.AssetPrefix(assetID)); err != nil {
		logutil.GetLogger(ctx).Warn("delete asset storage failed",
			zap.String("asset_id", assetID), zap.Error(err))
	}
	if err := s.store.DeletePrefix(ctx, storage.ThumbPrefix(assetID)); err != nil {
		logutil.GetLogger(ctx).Warn("delete asset thumbnails failed",
			zap.String("asset_id", assetID), zap.Error(err))
	}
	if err := s.files.DeleteByAsset(ctx, assetID); err != nil {
		return err
	}
	if err := s.versions.DeleteByAsset(ctx, assetID); err != nil {
		return err
	}
	if err := s.comments.DeleteByAsset(ctx, assetID); err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, assetID); err != nil {
		return err
	}
	s.logChange(ctx, model.ChangeAssetDeleted, assetID, map[string]interface{}{})
	return nil
}

func (s *AssetService) Changes(ctx context.Context, sinceID int64, limit uint) ([]model.Change, error) {
	if limit == 0 || limit > 1000 {
		limit = 100
	}
	return s.changes.ListSince(ctx, sinceID, limit)
}

// logChange appends to the change feed; feed failures are logged and never
// fail the originating request.
func (s *AssetService) logChange(ctx context.Context, changeType, assetID string, payload map[string]interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	change := &model.Change{ChangeType: changeType, AssetID: assetID, Payload: raw}
	if err := s.changes.Append(ctx, change); err != nil {
		logutil.GetLogger(ctx).Warn("append change failed",
			zap.String("change_type", changeType), zap.String("asset_id", assetID), zap.Error(err))
	}
}
