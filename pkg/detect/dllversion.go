package detect

import (
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/model"
)

// DLLVersion registers a package version taken from the file version of
// system DLLs, installed at the OS root.
type DLLVersion struct {
	env     *Env
	name    string
	pkg     string
	dlls    []string
	prepend map[string]uint64
}

// NewWindowsInstaller detects the Windows Installer from msi.dll.
func NewWindowsInstaller(env *Env) *DLLVersion {
	return &DLLVersion{
		env:  env,
		name: "windows-installer",
		pkg:  "com.microsoft.WindowsInstaller",
		dlls: []string{"msi.dll"},
	}
}

// NewMSXML detects the Microsoft XML core services. msxml3.dll reports
// versions like 8.x, so its version is prefixed with 3.
func NewMSXML(env *Env) *DLLVersion {
	return &DLLVersion{
		env:     env,
		name:    "msxml",
		pkg:     "com.microsoft.MSXML",
		dlls:    []string{"msxml.dll", "msxml2.dll", "msxml3.dll", "msxml4.dll", "msxml5.dll", "msxml6.dll"},
		prepend: map[string]uint64{"msxml3.dll": 3},
	}
}

// Name implements Detector.
func (d *DLLVersion) Name() string { return d.name }

// Detect implements Detector.
func (d *DLLVersion) Detect(j job.Job, store *inventory.Store) (Report, error) {
	var rep Report
	for _, dll := range d.dlls {
		if j.IsCancelled() {
			break
		}
		v := d.env.Platform.FileVersion(dll)
		if v.IsZero() {
			continue
		}
		if p, ok := d.prepend[dll]; ok {
			v = v.Prepend(p)
		}
		id := model.NewIdentity(d.pkg, v)
		d.env.register(id)
		store.SetDirectoryIfNotInstalled(id, d.env.Platform.Root())
		rep.Observed++
	}
	j.Complete()
	return rep, nil
}
