package detect

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/fsutil"
	"github.com/glorpus-work/tally/pkg/model"
)

// UninstallScript is the name of the generated uninstall script.
const UninstallScript = "Uninstall.bat"

// managedDir creates <InstallDir>/<Vendor>Detected/<title>, falling back to
// a "-<version>" suffixed and then numbered name if it already exists.
func (e *Env) managedDir(title string, version model.Version) (string, error) {
	dir := filepath.Join(e.InstallDir, e.vendor()+"Detected", fsutil.MakeValidFilename(title, '_'))
	if fsutil.Exists(e.FS, dir) {
		dir = fsutil.FindNonExistingPath(e.FS, dir+"-"+version.String())
	}
	if err := e.FS.MkdirAll(dir, fsutil.DirModeDefault); err != nil {
		return "", errors.Wrapf(errors.ErrPersistenceWrite, "create %s: %v", dir, err)
	}
	return dir, nil
}

// scriptDir is the reserved folder below an installation directory.
func (e *Env) scriptDir(dir string) string {
	return filepath.Join(dir, "."+e.vendor())
}

// writeUninstallScript writes lines with CRLF endings to the uninstall
// script of dir.
func (e *Env) writeUninstallScript(dir string, lines ...string) error {
	sub := e.scriptDir(dir)
	if err := e.FS.MkdirAll(sub, fsutil.DirModeDefault); err != nil {
		return errors.Wrapf(errors.ErrPersistenceWrite, "create %s: %v", sub, err)
	}
	content := strings.Join(lines, "\r\n") + "\r\n"
	path := filepath.Join(sub, UninstallScript)
	if err := afero.WriteFile(e.FS, path, []byte(content), fsutil.FileModeDefault); err != nil {
		return errors.Wrapf(errors.ErrPersistenceWrite, "write %s: %v", path, err)
	}
	return nil
}

// parentDir returns the directory part of a path using either separator.
func parentDir(p string) string {
	i := strings.LastIndexAny(p, `\/`)
	switch {
	case i < 0:
		return ""
	case i == 0:
		return p[:1]
	case i == 2 && p[1] == ':':
		return p[:3]
	}
	return p[:i]
}

// trimDir strips trailing separators except from a bare root.
func trimDir(p string) string {
	p = strings.TrimSpace(p)
	for len(p) > 1 && strings.ContainsAny(p[len(p)-1:], `\/`) {
		if len(p) == 3 && p[1] == ':' {
			break
		}
		p = p[:len(p)-1]
	}
	return p
}
