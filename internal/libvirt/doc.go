// Package libvirt provides a client wrapper for interacting with libvirt
// and renders built disk configurations as libvirt disk devices.
//
// This package wraps github.com/digitalocean/go-libvirt to provide:
//   - Connection management (connect, disconnect, ping)
//   - Disk device XML generation from built disk configurations
//
// Connection Management:
//
//	client, err := libvirt.Connect("", 0)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Disk XML Generation:
//
//	xml, err := libvirt.GenerateDomainXML(&libvirt.DiskSet{
//	    Name:  "web",
//	    Disks: result.Disks,
//	    Boot:  &result.Boot.BootDevice.DiskAddress,
//	})
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces. Consumers (internal/cache) define
// their own client interfaces listing only the operations they need, and
// *libvirt.Libvirt satisfies them implicitly.
package libvirt
