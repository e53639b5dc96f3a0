package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jbweber/diskforge/internal/cache"
	"github.com/jbweber/diskforge/internal/libvirt"
	"github.com/jbweber/diskforge/internal/resolver"
)

var (
	cacheUpdatePool string
	cacheListAll    bool
)

// Lookup cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the image lookup cache",
	Long: `Manage the local cache of projects and catalog images used to resolve
image names in blueprints.

The cache is refreshed from a libvirt storage pool: every volume becomes
a catalog image owned by the configured project.`,
}

func init() {
	cacheCmd.AddCommand(cacheUpdateCmd)
	cacheCmd.AddCommand(cacheListCmd)

	cacheUpdateCmd.Flags().StringVar(&cacheUpdatePool, "pool", "", "Storage pool to scan (default from config)")
	cacheListCmd.Flags().BoolVar(&cacheListAll, "all", false, "List images of every project")
}

var cacheUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the cache from the libvirt image pool",
	Long: `Scan the libvirt image pool and record its volumes as catalog images
of the configured project.

Volumes whose format is iso, or whose name ends in .iso, become ISO_IMAGE
entries; all others become DISK_IMAGE entries.

Example:
  diskforge cache update --pool diskforge-images`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.RequireProject(); err != nil {
			return err
		}

		pool := cacheUpdatePool
		if pool == "" {
			pool = cfg.Libvirt.ImagePool
		}

		c, err := cache.Load(cfg.CachePath, logger)
		if err != nil {
			return err
		}

		logger.Info("connecting to libvirt", zap.String("socket", cfg.Libvirt.Socket))
		client, err := libvirt.ConnectWithContext(ctx, cfg.Libvirt.Socket, 0)
		if err != nil {
			return errors.Wrap(err, "failed to connect to libvirt")
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Warn("failed to close libvirt connection", zap.Error(closeErr))
			}
		}()

		result, err := c.Refresh(ctx, client.Libvirt(), cfg.Project, pool)
		if err != nil {
			return errors.Wrap(err, "failed to refresh cache")
		}

		fmt.Printf("✓ Cached %d image(s) for project %s from pool %s\n", result.Images, result.Project, pool)
		fmt.Printf("  account: %s\n", result.AccountUUID)
		fmt.Printf("  cache:   %s\n", c.Path())
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached catalog images",
	Long: `List the catalog images in the lookup cache.

By default only images of the configured project are shown; use --all
to list every cached image.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := cache.Load(cfg.CachePath, logger)
		if err != nil {
			return err
		}

		images := c.Images()
		if !cacheListAll {
			if err := cfg.RequireProject(); err != nil {
				return err
			}
			project, err := c.LookupProject(ctx, cfg.Project)
			if err != nil {
				if errors.Is(err, resolver.ErrNotFound) {
					fmt.Fprintf(os.Stderr, "Project %s is not cached; %s\n", cfg.Project, resolver.RemediationHint)
					return nil
				}
				return err
			}
			account := project.Accounts[resolver.AccountKeyImageService]
			images = lo.Filter(images, func(img resolver.Image, _ int) bool {
				return img.AccountUUID == account
			})
		}

		formatter, err := newFormatter()
		if err != nil {
			return err
		}
		out, err := formatter.FormatImages(images)
		if err != nil {
			return errors.Wrap(err, "failed to format output")
		}

		fmt.Print(out)
		return nil
	},
}
