package hooks

import (
	"sync"

	"github.com/glorpus-work/tally/pkg/errors"
)

// ErrHookTypeEmpty is returned when a hooks type is empty.
var ErrHookTypeEmpty = errors.Wrap(errors.ErrHookLoad, "hooks type cannot be empty")

// DefaultHookManager is the default implementation of HookManager.
type DefaultHookManager struct {
	executor *TengoExecutor
	mutex    sync.RWMutex
}

// NewHookManager creates a new hook manager.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
	}
}

// Execute runs the specified hook type with the given context.
func (m *DefaultHookManager) Execute(hookType HookType, ctx HookContext) error {
	if !m.HasHook(hookType) {
		return nil // No hook registered for this type
	}
	return m.executor.Execute(hookType, ctx)
}

// AddHook compiles and adds a hook. Unknown types are rejected.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	if !hook.Type.Valid() {
		return errors.Wrapf(errors.ErrHookLoad, "unsupported hook type %q", hook.Type)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.executor.AddScript(hook.Type, hook.Content)
}

// RemoveHook removes a hook of the specified type.
func (m *DefaultHookManager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.executor.HasScript(hookType)
}

// ExecuteAll executes the given hook types in order, stopping at the first
// failure.
func (m *DefaultHookManager) ExecuteAll(types []HookType, ctx HookContext) error {
	for _, hookType := range types {
		if err := m.Execute(hookType, ctx); err != nil {
			return errors.Wrapf(err, "error executing hook %s", hookType)
		}
	}
	return nil
}
