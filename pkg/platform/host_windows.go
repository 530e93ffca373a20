//go:build windows

package platform

import (
	"path/filepath"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/model"
)

// Host probes the running Windows installation.
type Host struct{}

// NewHost returns the probe of the running OS.
func NewHost() *Host { return &Host{} }

// Name implements Info.
func (*Host) Name() string { return OSWindows }

// OSVersion implements Info.
func (*Host) OSVersion() (model.Version, error) {
	v := windows.RtlGetVersion()
	return model.NewVersion(uint64(v.MajorVersion), uint64(v.MinorVersion), uint64(v.BuildNumber)), nil
}

// Root implements Info.
func (*Host) Root() string {
	dir, err := windows.GetWindowsDirectory()
	if err != nil {
		logger.Warn("cannot resolve the Windows directory", logger.Fields{"error": err})
		return `C:\Windows`
	}
	return dir
}

// Is64Bit implements Info.
func (*Host) Is64Bit() bool {
	if Is64BitArch(runtime.GOARCH) {
		return true
	}
	var wow64 bool
	if err := windows.IsWow64Process(windows.CurrentProcess(), &wow64); err != nil {
		return false
	}
	return wow64
}

// FileVersion implements Info.
func (*Host) FileVersion(dll string) model.Version {
	sys, err := windows.GetSystemDirectory()
	if err != nil {
		return model.Version{}
	}
	path := filepath.Join(sys, dll)

	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil || size == 0 {
		return model.Version{}
	}
	buf := make([]byte, size)
	if err := windows.GetFileVersionInfo(path, 0, size, unsafe.Pointer(&buf[0])); err != nil {
		return model.Version{}
	}

	var fixed *windows.VS_FIXEDFILEINFO
	var fixedLen uint32
	if err := windows.VerQueryValue(unsafe.Pointer(&buf[0]), `\`, unsafe.Pointer(&fixed), &fixedLen); err != nil || fixed == nil {
		return model.Version{}
	}
	return model.NewVersion(
		uint64(fixed.FileVersionMS>>16),
		uint64(fixed.FileVersionMS&0xffff),
		uint64(fixed.FileVersionLS>>16),
		uint64(fixed.FileVersionLS&0xffff),
	)
}
