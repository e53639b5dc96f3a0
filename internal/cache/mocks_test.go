package cache

import (
	"fmt"
	"sync"

	"github.com/digitalocean/go-libvirt"
)

// mockLibvirtClient is a mock implementation of the libvirtClient interface for testing.
type mockLibvirtClient struct {
	mu sync.Mutex

	pool    libvirt.StoragePool
	volumes []libvirt.StorageVol
	formats map[string]string

	// Configurable failures
	lookupErr  error
	refreshErr error
	listErr    error

	// Call tracking
	lookupCalls  []string
	refreshCalls int
}

func newMockLibvirtClient() *mockLibvirtClient {
	return &mockLibvirtClient{
		pool: libvirt.StoragePool{
			Name: "diskforge-images",
			UUID: libvirt.UUID{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8},
		},
		volumes: []libvirt.StorageVol{
			{Pool: "diskforge-images", Name: "centos7.qcow2", Key: "/images/centos7.qcow2"},
			{Pool: "diskforge-images", Name: "tools.iso", Key: "/images/tools.iso"},
			{Pool: "diskforge-images", Name: "rescue", Key: "/images/rescue"},
		},
		formats: map[string]string{
			"centos7.qcow2": "qcow2",
			"tools.iso":     "raw",
			"rescue":        "iso",
		},
	}
}

func (m *mockLibvirtClient) StoragePoolLookupByName(name string) (libvirt.StoragePool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupCalls = append(m.lookupCalls, name)
	if m.lookupErr != nil {
		return libvirt.StoragePool{}, m.lookupErr
	}
	if name != m.pool.Name {
		return libvirt.StoragePool{}, fmt.Errorf("pool not found: %s", name)
	}
	return m.pool, nil
}

func (m *mockLibvirtClient) StoragePoolRefresh(libvirt.StoragePool, uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	return m.refreshErr
}

func (m *mockLibvirtClient) StoragePoolListAllVolumes(libvirt.StoragePool, int32, uint32) ([]libvirt.StorageVol, uint32, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.volumes, uint32(len(m.volumes)), nil
}

func (m *mockLibvirtClient) StorageVolGetXMLDesc(vol libvirt.StorageVol, _ uint32) (string, error) {
	format, ok := m.formats[vol.Name]
	if !ok {
		return "", fmt.Errorf("volume not found: %s", vol.Name)
	}
	return fmt.Sprintf(`<volume type="file">
  <name>%s</name>
  <key>%s</key>
  <target>
    <path>%s</path>
    <format type="%s"/>
  </target>
</volume>`, vol.Name, vol.Key, vol.Key, format), nil
}
