//go:build !windows

package platform

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/model"
)

// Host probes the running Unix-like OS.
type Host struct{}

// NewHost returns the probe of the running OS.
func NewHost() *Host { return &Host{} }

// Name implements Info.
func (*Host) Name() string { return NormalizeOS(runtime.GOOS) }

// OSVersion implements Info using the kernel release.
func (*Host) OSVersion() (model.Version, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return model.Version{}, errors.Wrapf(errors.ErrSourceUnavailable, "uname: %v", err)
	}
	return leadingVersion(unix.ByteSliceToString(u.Release[:]))
}

// Root implements Info.
func (*Host) Root() string { return "/" }

// Is64Bit implements Info.
func (*Host) Is64Bit() bool {
	var u unix.Utsname
	if err := unix.Uname(&u); err == nil {
		return Is64BitArch(unix.ByteSliceToString(u.Machine[:]))
	}
	return Is64BitArch(runtime.GOARCH)
}

// FileVersion implements Info. Shared objects carry no version resource.
func (*Host) FileVersion(string) model.Version { return model.Version{} }
