// Package sync pushes exported asset directories to the server and follows
// the server's change feed. The export root is laid out as
// <root>/<family>/<asset_id>/ with the version files directly inside the
// asset directory.
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"asset-server/internal/client"
	"asset-server/internal/family"
)

type Options struct {
	Root         string
	PollInterval time.Duration
	// Debounce delays a push after the last filesystem event so exporters
	// writing several files produce a single version.
	Debounce time.Duration
	DryRun   bool
}

type Agent struct {
	cli  *client.Client
	opts Options

	mu      sync.Mutex
	pending map[string]time.Time // asset dir -> last event time
	cursor  int64
}

func NewAgent(cli *client.Client, opts Options) *Agent {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 3 * time.Second
	}
	return &Agent{cli: cli, opts: opts, pending: map[string]time.Time{}}
}

// Run pushes every asset directory once, then watches the export root for
// new exports and polls the change feed until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx).With(zap.String("root", a.opts.Root))

	dirs, err := ScanRoot(a.opts.Root)
	if err != nil {
		return err
	}
	logger.Info("initial scan", zap.Int("assets", len(dirs)))
	for _, dir := range dirs {
		if err := a.push(ctx, dir); err != nil {
			logger.Error("push failed", zap.String("asset_id", dir.AssetID), zap.Error(err))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := a.watchTree(watcher); err != nil {
		return err
	}

	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()
	flush := time.NewTicker(time.Second)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			a.handleEvent(watcher, ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-flush.C:
			a.flushPending(ctx)
		case <-ticker.C:
			a.pollChanges(ctx)
		}
	}
}

// watchTree registers the root, every family directory and every asset
// directory. fsnotify does not recurse on its own.
func (a *Agent) watchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(a.opts.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func (a *Agent) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		_ = watcher.Add(ev.Name)
		return
	}
	dir := filepath.Dir(ev.Name)
	rel, err := filepath.Rel(a.opts.Root, dir)
	if err != nil {
		return
	}
	// Only files directly inside <family>/<asset_id> count as exports.
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return
	}
	if _, ok := family.Get(parts[0]); !ok {
		return
	}
	a.mu.Lock()
	a.pending[dir] = time.Now()
	a.mu.Unlock()
}

// flushPending pushes asset directories whose last event is older than the
// debounce window.
func (a *Agent) flushPending(ctx context.Context) {
	a.mu.Lock()
	var ready []string
	now := time.Now()
	for dir, last := range a.pending {
		if now.Sub(last) >= a.opts.Debounce {
			ready = append(ready, dir)
			delete(a.pending, dir)
		}
	}
	a.mu.Unlock()

	sort.Strings(ready)
	for _, dir := range ready {
		assetDir := AssetDir{
			Path:    dir,
			AssetID: filepath.Base(dir),
			Family:  filepath.Base(filepath.Dir(dir)),
		}
		if err := a.push(ctx, assetDir); err != nil {
			logutil.GetLogger(ctx).Error("push failed",
				zap.String("asset_id", assetDir.AssetID), zap.Error(err))
		}
	}
}

func (a *Agent) push(ctx context.Context, dir AssetDir) error {
	if a.opts.DryRun {
		logutil.GetLogger(ctx).Info("dry run, skipping push",
			zap.String("asset_id", dir.AssetID), zap.String("family", dir.Family))
		return nil
	}
	version, files, err := PushAsset(ctx, a.cli, dir)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("pushed asset",
		zap.String("asset_id", dir.AssetID),
		zap.String("family", dir.Family),
		zap.Int("version", version),
		zap.Int("files", files))
	return nil
}

// pollChanges logs remote activity so operators can follow what other
// publishers do. The cursor never goes backwards.
func (a *Agent) pollChanges(ctx context.Context) {
	logger := logutil.GetLogger(ctx)
	changes, err := a.cli.Changes(ctx, a.cursor, 200)
	if err != nil {
		logger.Warn("poll changes failed", zap.Error(err))
		return
	}
	for _, ch := range changes {
		logger.Info("remote change",
			zap.Int64("id", ch.ID),
			zap.String("type", ch.ChangeType),
			zap.String("asset_id", ch.AssetID))
		if ch.ID > a.cursor {
			a.cursor = ch.ID
		}
	}
}

// AssetDir is one publishable directory found under the export root.
type AssetDir struct {
	Path    string
	AssetID string
	Family  string
}

// ScanRoot lists every <family>/<asset_id> directory under root. Unknown
// family directories are skipped with a warning from the caller side; here
// they are silently ignored so stray folders do not break a push.
func ScanRoot(root string) ([]AssetDir, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read export root: %w", err)
	}
	var dirs []AssetDir
	for _, familyEntry := range entries {
		if !familyEntry.IsDir() {
			continue
		}
		if _, ok := family.Get(familyEntry.Name()); !ok {
			continue
		}
		familyPath := filepath.Join(root, familyEntry.Name())
		assetEntries, err := os.ReadDir(familyPath)
		if err != nil {
			return nil, err
		}
		for _, assetEntry := range assetEntries {
			if !assetEntry.IsDir() {
				continue
			}
			dirs = append(dirs, AssetDir{
				Path:    filepath.Join(familyPath, assetEntry.Name()),
				AssetID: assetEntry.Name(),
				Family:  familyEntry.Name(),
			})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	return dirs, nil
}

// PushAsset upserts the asset, publishes a new version and uploads every
// file in the directory with an extension the family allows. It returns the
// assigned version and the number of files uploaded.
func PushAsset(ctx context.Context, cli *client.Client, dir AssetDir) (int, int, error) {
	files, err := collectFiles(dir)
	if err != nil {
		return 0, 0, err
	}
	if len(files) == 0 {
		return 0, 0, fmt.Errorf("no publishable files in %s", dir.Path)
	}
	if _, err := cli.UpsertAsset(ctx, &client.UpsertAssetRequest{
		AssetID: dir.AssetID,
		Name:    dir.AssetID,
		Family:  dir.Family,
	}); err != nil {
		return 0, 0, fmt.Errorf("upsert %s: %w", dir.AssetID, err)
	}
	res, err := cli.Publish(ctx, dir.AssetID, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("publish %s: %w", dir.AssetID, err)
	}
	for _, path := range files {
		if err := cli.UploadFile(ctx, dir.AssetID, res.Version, path); err != nil {
			return res.Version, 0, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		}
	}
	return res.Version, len(files), nil
}

func collectFiles(dir AssetDir) ([]string, error) {
	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !family.AllowsExtension(dir.Family, ext) {
			continue
		}
		files = append(files, filepath.Join(dir.Path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
