package hooks

import (
	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/inventory"
)

// StatusHook runs hook scripts for inventory status changes. Script
// failures are logged and never reach the store.
type StatusHook struct {
	manager HookManager
	vars    map[string]interface{}
}

// NewStatusHook creates an observer executing manager's hooks. vars is
// passed to every script.
func NewStatusHook(manager HookManager, vars map[string]interface{}) *StatusHook {
	return &StatusHook{manager: manager, vars: vars}
}

// typesFor returns the hook types an event triggers.
func typesFor(e inventory.Event) []HookType {
	types := []HookType{StatusChanged}
	switch {
	case e.Installed() && e.Previous == "":
		types = append(types, Installed)
	case !e.Installed():
		types = append(types, Removed)
	}
	return types
}

// StatusChanged implements inventory.Observer.
func (h *StatusHook) StatusChanged(e inventory.Event) {
	ctx := HookContext{
		PackageName:       e.Identity.Package(),
		PackageVersion:    e.Identity.Version().String(),
		Directory:         e.Directory,
		PreviousDirectory: e.Previous,
		Vars:              h.vars,
	}
	for _, t := range typesFor(e) {
		if err := h.manager.Execute(t, ctx); err != nil {
			logger.Warn("hook failed", logger.Fields{
				"hook":    string(t),
				"package": e.Identity.String(),
				"error":   err,
			})
		}
	}
}
