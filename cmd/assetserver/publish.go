package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"asset-server/internal/client"
	"asset-server/internal/family"
	"asset-server/internal/sync"
)

// newPublishCmd pushes exported asset directories as new versions. With
// --root it scans the whole <root>/<family>/<asset_id>/ layout; with a
// positional argument it pushes that single asset directory.
func newPublishCmd() *cobra.Command {
	var (
		server     string
		apiKey     string
		root       string
		familyName string
		strictName bool
	)

	cmd := &cobra.Command{
		Use:   "publish [asset-dir]",
		Short: "publish exported asset directories as new versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := client.New(server, apiKey)
			ctx := context.Background()

			if root != "" {
				if len(args) != 0 {
					return fmt.Errorf("pass either --root or an asset directory, not both")
				}
				return publishRoot(ctx, cli, root, strictName)
			}
			if len(args) == 0 {
				return fmt.Errorf("an asset directory or --root is required")
			}

			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if familyName == "" {
				// The export layout puts the family directory above the
				// asset directory.
				familyName = filepath.Base(filepath.Dir(dir))
			}
			return publishOne(ctx, cli, sync.AssetDir{
				Path:    dir,
				AssetID: filepath.Base(dir),
				Family:  familyName,
			}, strictName)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://127.0.0.1:5000", "asset server base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key with editor role")
	cmd.Flags().StringVar(&root, "root", "", "export root to scan (<root>/<family>/<asset>)")
	cmd.Flags().StringVar(&familyName, "family", "", "asset family (default: parent directory name)")
	cmd.Flags().BoolVar(&strictName, "strict-naming", false, "reject asset names that break the family naming convention")
	return cmd
}

func publishRoot(ctx context.Context, cli *client.Client, root string, strictName bool) error {
	dirs, err := sync.ScanRoot(root)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no asset directories under %s", root)
	}
	for _, dir := range dirs {
		if err := publishOne(ctx, cli, dir, strictName); err != nil {
			return err
		}
	}
	return nil
}

func publishOne(ctx context.Context, cli *client.Client, dir sync.AssetDir, strictName bool) error {
	if _, ok := family.Get(dir.Family); !ok {
		return fmt.Errorf("unknown family %q, valid: %v", dir.Family, family.Names())
	}
	if strictName && !family.MatchesNaming(dir.Family, dir.AssetID) {
		return fmt.Errorf("asset name %q does not match the %s naming convention", dir.AssetID, dir.Family)
	}
	version, files, err := sync.PushAsset(ctx, cli, dir)
	if err != nil {
		return err
	}
	fmt.Printf("published %s v%d (%d files)\n", dir.AssetID, version, files)
	return nil
}
