// Package platform probes the identity of the host operating system: its
// name, version, root directory, bit width and system DLL versions.
package platform

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSDarwin represents the macOS operating system.
	OSDarwin = "darwin"
	// OSFreeBSD represents the FreeBSD operating system.
	OSFreeBSD = "freebsd"

	// ArchAMD64 represents the AMD64 (x86_64) architecture.
	ArchAMD64 = "amd64"
	// Arch386 represents the 32-bit x86 architecture.
	Arch386 = "386"
	// ArchARM represents the ARM architecture (32-bit).
	ArchARM = "arm"
	// ArchARM64 represents the ARM64 (AArch64) architecture.
	ArchARM64 = "arm64"
)

// Package names registered for the OS identity.
const (
	PackageWindows   = "com.microsoft.Windows"
	PackageWindows32 = "com.microsoft.Windows32"
	PackageWindows64 = "com.microsoft.Windows64"
	PackageLinux     = "org.kernel.Linux"
	PackageDarwin    = "com.apple.Darwin"
	PackageFreeBSD   = "org.freebsd.FreeBSD"
)
