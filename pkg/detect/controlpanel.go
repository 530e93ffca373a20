package detect

import (
	"strings"

	"github.com/google/uuid"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/catalog"
	"github.com/glorpus-work/tally/pkg/cmdline"
	"github.com/glorpus-work/tally/pkg/fsutil"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/model"
	"github.com/glorpus-work/tally/pkg/source"
)

const (
	uninstallKey      = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`
	uninstallKeyWow64 = `SOFTWARE\WoW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`
)

type uninstallLocation struct {
	hive   source.Hive
	path   string
	only64 bool
}

var uninstallLocations = []uninstallLocation{
	{source.LocalMachine, uninstallKey, false},
	{source.LocalMachine, uninstallKeyWow64, true},
	{source.CurrentUser, uninstallKey, false},
	{source.CurrentUser, uninstallKeyWow64, true},
}

// ControlPanel detects programs from the uninstall registrations shown in
// the control panel and owns the "control-panel:" namespace.
type ControlPanel struct {
	env *Env
}

// NewControlPanel creates the uninstall-entries detector.
func NewControlPanel(env *Env) *ControlPanel {
	return &ControlPanel{env: env}
}

// Name implements Detector.
func (d *ControlPanel) Name() string { return "control-panel" }

type controlPanelSweep struct {
	installedDirs []string
	found         map[string]bool
}

// Detect implements Detector. Stale records are cleared unless none of the
// locations could be opened.
func (d *ControlPanel) Detect(j job.Job, store *inventory.Store) (Report, error) {
	sweep := &controlPanelSweep{
		installedDirs: store.InstalledDirectories(),
		found:         make(map[string]bool),
	}

	var rep Report
	opened := 0
	for i, loc := range uninstallLocations {
		if loc.only64 && !d.env.Platform.Is64Bit() {
			continue
		}
		if j.IsCancelled() {
			return rep, nil
		}
		n, ok := d.detectLocation(loc, store, sweep)
		if ok {
			opened++
		}
		rep.Observed += n
		j.SetProgress(float64(i+1) / float64(len(uninstallLocations)))
	}

	if opened == 0 {
		logger.Debug("no uninstall registrations readable, keeping existing records")
		j.Complete()
		return rep, nil
	}
	rep.Cleared = clearStale(store, NamespaceControlPanel, func(tag string) bool { return sweep.found[tag] })
	j.Complete()
	return rep, nil
}

func (d *ControlPanel) detectLocation(loc uninstallLocation, store *inventory.Store, sweep *controlPanelSweep) (int, bool) {
	root, err := d.env.Registry.Open(loc.hive, loc.path, source.ViewDefault)
	if err != nil {
		logger.Debug("uninstall location not present", logger.Fields{"hive": loc.hive.String(), "path": loc.path})
		return 0, false
	}
	defer func() { _ = root.Close() }()

	names, err := root.SubKeyNames()
	if err != nil {
		logger.Warn("cannot enumerate uninstall location", logger.Fields{"path": root.Path(), "error": err})
		return 0, false
	}

	observed := 0
	for _, name := range names {
		k, err := root.OpenSubKey(name)
		if err != nil {
			continue
		}
		if d.detectEntry(k, name, store, sweep) {
			observed++
		}
		_ = k.Close()
	}
	return observed, true
}

// versionSource extracts a version from an uninstall entry.
type versionSource struct {
	name    string
	extract func(k source.Key) (model.Version, bool)
}

// controlPanelVersionSources are tried in this order; the first hit wins.
var controlPanelVersionSources = []versionSource{
	{"DisplayVersion", func(k source.Key) (model.Version, bool) {
		return parsedString(k, "DisplayVersion")
	}},
	{"numeric VersionMajor/VersionMinor", func(k source.Key) (model.Version, bool) {
		major, err := k.Uint32("VersionMajor")
		if err != nil {
			return model.Version{}, false
		}
		minor, err := k.Uint32("VersionMinor")
		if err != nil {
			minor = 0
		}
		return model.NewVersion(uint64(major), uint64(minor)), true
	}},
	{"string VersionMajor/VersionMinor", func(k source.Key) (model.Version, bool) {
		major, err := k.String("VersionMajor")
		if err != nil {
			return model.Version{}, false
		}
		s := major
		if minor, err := k.String("VersionMinor"); err == nil {
			s = major + "." + minor
		}
		v, err := model.ParseVersion(s)
		return v, err == nil
	}},
	{"DisplayName suffix", func(k source.Key) (model.Version, bool) {
		name, err := k.String("DisplayName")
		if err != nil {
			return model.Version{}, false
		}
		parts := strings.Fields(name)
		if len(parts) < 2 {
			return model.Version{}, false
		}
		last := parts[len(parts)-1]
		if !strings.Contains(last, ".") {
			return model.Version{}, false
		}
		v, err := model.ParseVersion(last)
		return v, err == nil
	}},
}

func entryVersion(k source.Key) (model.Version, bool) {
	for _, src := range controlPanelVersionSources {
		if v, ok := src.extract(k); ok {
			return v.Normalize(), true
		}
	}
	return model.Version{}, false
}

// controlPanelPackage maps a registration key name onto a package name.
func controlPanelPackage(keyName string) string {
	return model.MakeValidPackageName("control-panel." + strings.ReplaceAll(keyName, ".", "_"))
}

func optionalString(k source.Key, name string) string {
	v, err := k.String(name)
	if err != nil {
		return ""
	}
	return v
}

func (d *ControlPanel) detectEntry(k source.Key, keyName string, store *inventory.Store, sweep *controlPanelSweep) bool {
	v, ok := entryVersion(k)
	if !ok {
		logger.Debug("skipping uninstall entry without version", logger.Fields{"key": k.Path()})
		return false
	}
	id := model.NewIdentity(controlPanelPackage(keyName), v)
	d.env.register(id)

	tag := NamespaceControlPanel + k.Path()
	rec := store.FindOrCreate(id)
	store.SetDetectionInfo(id, tag)
	sweep.found[tag] = true

	title := d.savePackage(id, k, keyName)

	if rec.Installed() {
		return true
	}

	uninstall := strings.TrimSpace(d.uninstallCommand(k))
	if isMSIPassThrough(uninstall) {
		return true
	}

	dir := trimDir(optionalString(k, "InstallLocation"))
	if dir == "" && uninstall != "" {
		if prog, err := cmdline.First(uninstall); err == nil && fsutil.Exists(d.env.FS, prog) {
			dir = parentDir(prog)
		}
	}
	switch {
	case dir != "":
		if fsutil.IsUnderOrEquals(dir, sweep.installedDirs) {
			return true
		}
	case uninstall == "":
		// nothing to claim and nothing to run
		return true
	default:
		var err error
		dir, err = d.env.managedDir(title, id.Version())
		if err != nil {
			logger.Warn("cannot create managed directory", logger.Fields{"key": k.Path(), "error": err})
			return true
		}
	}

	if !fsutil.IsDir(d.env.FS, dir) {
		return true
	}
	sweep.installedDirs = append(sweep.installedDirs, dir)
	if uninstall != "" {
		if err := d.env.writeUninstallScript(dir, uninstall); err != nil {
			logger.Warn("cannot write uninstall script", logger.Fields{"key": k.Path(), "error": err})
			return true
		}
	}
	store.SetDirectory(id, dir)
	return true
}

// savePackage upserts title, description and URL; it returns the title.
func (d *ControlPanel) savePackage(id model.Identity, k source.Key, keyName string) string {
	p, err := d.env.Catalog.FindPackage(id.Package())
	if err != nil || p == nil {
		p = &catalog.Package{Name: id.Package(), Title: id.Package()}
	}
	p.Title = optionalString(k, "DisplayName")
	if p.Title == "" {
		p.Title = keyName
	}
	p.Description = "[Control Panel] " + p.Title

	p.URL = ""
	for _, name := range []string{"URLInfoAbout", "URLUpdateInfo"} {
		if u := optionalString(k, name); validURL(u) {
			p.URL = u
			break
		}
	}
	if err := d.env.Catalog.SavePackage(p); err != nil {
		logger.Debug("cannot save package metadata", logger.Fields{"package": p.Name, "error": err})
	}
	return p.Title
}

// uninstallCommand prefers the quiet variant. A bare path with spaces to an
// existing program is quoted.
func (d *ControlPanel) uninstallCommand(k source.Key) string {
	cmd := optionalString(k, "QuietUninstallString")
	if cmd == "" {
		cmd = optionalString(k, "UninstallString")
	}
	if cmd != "" && strings.Contains(cmd, " ") && !strings.Contains(cmd, `"`) && fsutil.Exists(d.env.FS, cmd) {
		cmd = `"` + cmd + `"`
	}
	return cmd
}

// isMSIPassThrough reports whether cmd only runs msiexec on a product code,
// in which case the MSI detector already covers the product.
func isMSIPassThrough(cmd string) bool {
	const prefixLen = len("MsiExec.exe /X")
	cmd = strings.TrimSpace(cmd)
	if len(cmd) <= prefixLen {
		return false
	}
	prefix := strings.ToLower(cmd[:prefixLen])
	if prefix != "msiexec.exe /x" && prefix != "msiexec.exe /i" {
		return false
	}
	code := cmd[prefixLen:]
	if !strings.HasPrefix(code, "{") {
		return false
	}
	_, err := uuid.Parse(code)
	return err == nil
}
