package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	// StatusChanged runs on every change of a record's directory.
	StatusChanged HookType = "status-changed"
	// Installed runs when a record gains a directory.
	Installed HookType = "installed"
	// Removed runs when a record loses its directory.
	Removed HookType = "removed"
)

// HookTypes lists the supported types in execution order.
var HookTypes = []HookType{StatusChanged, Installed, Removed}

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	for _, h := range HookTypes {
		if h == t {
			return true
		}
	}
	return false
}

// Hook represents a hooks script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	PackageName       string
	PackageVersion    string
	Directory         string
	PreviousDirectory string
	Vars              map[string]interface{}
}
