package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jbweber/diskforge/internal/libvirt"
)

var testConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test libvirt connection",
	Long:  `Test connectivity to the libvirt daemon used by 'cache update'.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := libvirt.ConnectWithContext(cmd.Context(), cfg.Libvirt.Socket, 0)
		if err != nil {
			return errors.Wrap(err, "failed to connect to libvirt")
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Warn("failed to close libvirt connection", zap.Error(closeErr))
			}
		}()

		fmt.Println("✓ Connected to libvirt daemon")

		if err := client.Ping(); err != nil {
			return errors.Wrap(err, "connection test failed")
		}

		// libvirt returns the version as an integer like 8006000 for 8.6.0
		version, err := client.Libvirt().ConnectGetLibVersion()
		if err != nil {
			return errors.Wrap(err, "failed to get libvirt version")
		}
		fmt.Printf("✓ Libvirt version: %d.%d.%d\n", version/1000000, (version%1000000)/1000, version%1000)

		pool, err := client.Libvirt().StoragePoolLookupByName(cfg.Libvirt.ImagePool)
		if err != nil {
			fmt.Printf("✗ Image pool %s not found\n", cfg.Libvirt.ImagePool)
			return nil
		}
		fmt.Printf("✓ Image pool %s found\n", pool.Name)
		return nil
	},
}
