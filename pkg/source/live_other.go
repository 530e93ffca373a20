//go:build !windows

package source

// Live returns empty sources: only Windows exposes a registry and an
// installer database. Detectors reading them contribute no evidence.
func Live() (Registry, MSI, error) {
	return NewMemoryRegistry(), NewMemoryMSI(), nil
}
