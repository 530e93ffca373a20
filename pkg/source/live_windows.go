//go:build windows

package source

// Live returns the OS-backed sources of the host.
func Live() (Registry, MSI, error) {
	return NewWindowsRegistry(), NewWindowsMSI(), nil
}
