package platform

import (
	"strings"

	"github.com/glorpus-work/tally/pkg/model"
)

// Info describes the host operating system.
type Info interface {
	// Name is the normalized OS name, e.g. "windows".
	Name() string
	// OSVersion is major.minor.build.
	OSVersion() (model.Version, error)
	// Root is the OS root directory, shared by every OS-level record.
	Root() string
	// Is64Bit reports whether the OS (not the process) is 64-bit.
	Is64Bit() bool
	// FileVersion returns the version resource of a system DLL, or the zero
	// Version if the file is absent or carries no version.
	FileVersion(dll string) model.Version
}

// NormalizeOS normalizes OS names to a common format.
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "win", "windows":
		return OSWindows
	case "macos", "darwin":
		return OSDarwin
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to a common format.
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64", "x64":
		return ArchAMD64
	case "x86", "i386", "i486", "i586", "i686":
		return Arch386
	case "aarch64":
		return ArchARM64
	}
	if strings.HasPrefix(arch, "armv") {
		return ArchARM
	}
	return arch
}

// Is64BitArch reports whether arch is a 64-bit architecture.
func Is64BitArch(arch string) bool {
	switch NormalizeArch(arch) {
	case ArchAMD64, ArchARM64, "ppc64", "ppc64le", "mips64", "mips64le", "s390x", "riscv64", "loong64":
		return true
	}
	return false
}

// OSPackages returns the base package name of the OS identity and, when the
// OS distinguishes them, the bit-width specific name.
func OSPackages(info Info) (base, bitness string) {
	switch info.Name() {
	case OSWindows:
		if info.Is64Bit() {
			return PackageWindows, PackageWindows64
		}
		return PackageWindows, PackageWindows32
	case OSDarwin:
		return PackageDarwin, ""
	case OSFreeBSD:
		return PackageFreeBSD, ""
	default:
		return PackageLinux, ""
	}
}

// leadingVersion parses the numeric prefix of s such as "6.8.0-45-generic".
func leadingVersion(s string) (model.Version, error) {
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	return model.ParseVersion(strings.Trim(s[:end], "."))
}
