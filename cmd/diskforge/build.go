package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/cache"
	"github.com/jbweber/diskforge/internal/disk"
	"github.com/jbweber/diskforge/internal/loader"
	"github.com/jbweber/diskforge/internal/pkgimage"
	"github.com/jbweber/diskforge/internal/resolver"
	"github.com/jbweber/diskforge/internal/vm"
)

var (
	buildDomainXML bool
	buildPool      string
)

var buildCmd = &cobra.Command{
	Use:   "build <blueprint.yaml>",
	Short: "Build the disk configuration described by a blueprint",
	Long: `Evaluate a VMDiskBlueprint and print the resulting disk configuration.

Catalog images are resolved through the lookup cache for the configured
project; packages are compiled locally. Run 'diskforge cache update' first
when the blueprint clones catalog images.

Output formats:
  -o table  One row per disk (default)
  -o yaml   VMDiskConfiguration resource
  -o json   VMDiskConfiguration resource

With --domain-xml the configuration is rendered as libvirt disk devices
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		blueprintPath := args[0]

		bp, err := loader.LoadFromFile(blueprintPath)
		if err != nil {
			return errors.Wrap(err, "failed to load blueprint")
		}

		opts := disk.Options{
			Packages: resolver.NewPackageResolver(pkgimage.NewCompiler(logger), logger),
			Logger:   logger,
		}

		if needsCatalog(bp.Spec.Disks) {
			if err := cfg.RequireProject(); err != nil {
				return err
			}
			c, err := cache.Load(cfg.CachePath, logger)
			if err != nil {
				return err
			}
			opts.Images = resolver.NewCatalog(cfg.Project, c, c, logger)
		}

		logger.Debug("building blueprint",
			zap.String("path", blueprintPath),
			zap.String("project", cfg.Project))

		result, err := vm.Evaluate(ctx, bp, opts)
		if err != nil {
			return errors.Wrapf(err, "failed to build %s", bp.Name)
		}

		if buildDomainXML {
			pool := buildPool
			if pool == "" {
				pool = cfg.Libvirt.StoragePool
			}
			xml, err := vm.DomainXML(result, pool)
			if err != nil {
				return err
			}
			fmt.Println(xml)
			return nil
		}

		formatter, err := newFormatter()
		if err != nil {
			return err
		}
		out, err := formatter.FormatConfiguration(result)
		if err != nil {
			return errors.Wrap(err, "failed to format output")
		}

		fmt.Print(out)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildDomainXML, "domain-xml", false, "Render libvirt disk XML instead of the configuration")
	buildCmd.Flags().StringVar(&buildPool, "pool", "", "Storage pool for rendered volumes (default from config)")
}

// needsCatalog reports whether any intent clones a catalog image.
func needsCatalog(disks []v1alpha1.DiskIntent) bool {
	return lo.SomeBy(disks, func(d v1alpha1.DiskIntent) bool {
		return d.Kind() == v1alpha1.IntentCloneImage
	})
}
