package hooks

import (
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/glorpus-work/tally/pkg/errors"
)

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts  map[HookType]*tengo.Compiled
	mutex    sync.RWMutex
	execLock sync.Mutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]*tengo.Compiled),
	}
}

var contextVars = []string{"packageName", "packageVersion", "directory", "previousDirectory", "installed", "vars", "err"}

// AddScript compiles script and stores it for hookType. Scripts see the
// variables packageName, packageVersion, directory, previousDirectory,
// installed and the map vars; setting err to a non-empty string or an error
// value fails the hook.
func (e *TengoExecutor) AddScript(hookType HookType, script string) error {
	s := tengo.NewScript([]byte(script))
	s.SetImports(stdlib.GetModuleMap("fmt", "os", "strings", "text", "times"))
	for _, name := range contextVars {
		if err := s.Add(name, ""); err != nil {
			return errors.Wrapf(errors.ErrHookLoad, "declare %s", name)
		}
	}
	compiled, err := s.Compile()
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "%s: %v", hookType, err)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = compiled
	return nil
}

// Execute runs the specified hooks type with the given context.
func (e *TengoExecutor) Execute(hookType HookType, ctx HookContext) error {
	e.mutex.RLock()
	compiled, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil // No script for this hooks type
	}

	// a compiled script keeps its globals; runs are serialized
	e.execLock.Lock()
	defer e.execLock.Unlock()

	vars := map[string]interface{}{
		"packageName":       ctx.PackageName,
		"packageVersion":    ctx.PackageVersion,
		"directory":         ctx.Directory,
		"previousDirectory": ctx.PreviousDirectory,
		"installed":         ctx.Directory != "",
		"vars":              map[string]interface{}(ctx.Vars),
		"err":               "",
	}
	for name, v := range vars {
		if err := compiled.Set(name, v); err != nil {
			return errors.Wrapf(errors.ErrHookExecution, "set %s: %v", name, err)
		}
	}
	if err := compiled.Run(); err != nil {
		return errors.Wrapf(errors.ErrHookExecution, "%s: %v", hookType, err)
	}

	// Check for any returned error
	errVar := compiled.Get("err")
	switch v := errVar.Value().(type) {
	case error:
		return errors.Wrapf(errors.ErrHookScript, "%s: %v", hookType, v)
	case string:
		if v != "" {
			return errors.Wrapf(errors.ErrHookScript, "%s: %s", hookType, v)
		}
	}
	return nil
}

// RemoveScript removes the script for the specified hooks type.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hooks type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
