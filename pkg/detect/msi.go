package detect

import (
	"strings"

	"github.com/google/uuid"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/catalog"
	"github.com/glorpus-work/tally/pkg/fsutil"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/model"
	"github.com/glorpus-work/tally/pkg/source"
)

var defaultMSIVersion = model.NewVersion(1, 0)

// MSI detects products of the OS installer database and owns the "msi:"
// namespace.
type MSI struct {
	env *Env
}

// NewMSI creates the installer-database detector.
func NewMSI(env *Env) *MSI {
	return &MSI{env: env}
}

// Name implements Detector.
func (d *MSI) Name() string { return "msi" }

// Detect implements Detector. Stale records are only cleared when the
// product list could be read.
func (d *MSI) Detect(j job.Job, store *inventory.Store) (Report, error) {
	products, err := d.env.MSI.Products()
	if err != nil {
		return Report{}, err
	}

	installedDirs := store.InstalledDirectories()
	present := make(map[string]bool, len(products))
	var rep Report

	for i, guid := range products {
		if j.IsCancelled() {
			return rep, nil
		}
		present[NamespaceMSI+guid] = true
		if _, err := uuid.Parse(guid); err != nil {
			logger.Debug("skipping product with malformed code", logger.Fields{"product": guid})
			continue
		}
		if d.detectProduct(guid, store, installedDirs) {
			rep.Observed++
		}
		j.SetProgress(float64(i+1) / float64(len(products)))
	}

	rep.Cleared = clearStale(store, NamespaceMSI, func(tag string) bool { return present[tag] })
	j.Complete()
	return rep, nil
}

func (d *MSI) info(guid, prop string) string {
	v, err := d.env.MSI.ProductInfo(guid, prop)
	if err != nil {
		return ""
	}
	return v
}

// identity resolves the product through its catalog link. linked is false
// for a synthesized "msi.<code>" identity.
func (d *MSI) identity(guid string) (id model.Identity, linked bool) {
	if pv, err := d.env.Catalog.FindPackageVersionByExternalID(guid); err == nil && pv != nil {
		return model.NewIdentity(pv.Package, pv.Version), true
	}

	name := "msi." + strings.Trim(guid, "{}")
	v, err := model.ParseVersion(d.info(guid, source.PropVersionString))
	if err != nil {
		v = defaultMSIVersion
	}
	return model.NewIdentity(name, v), false
}

// placeholder reports whether p only carries the name it was created with.
func placeholder(p *catalog.Package) bool {
	return p.Title == "" || (p.Title == p.Name && p.Description == "")
}

// packageFor loads or synthesizes the package metadata. Title and
// description are only set on new packages; the URL only while empty.
func (d *MSI) packageFor(id model.Identity, guid string) *catalog.Package {
	p, err := d.env.Catalog.FindPackage(id.Package())
	if err != nil || p == nil || placeholder(p) {
		title := d.info(guid, source.PropProductName)
		if title == "" {
			title = guid
		}
		p = &catalog.Package{
			Name:        id.Package(),
			Title:       title,
			Description: "[MSI database] " + title + " GUID: " + guid,
		}
	}
	for _, prop := range []string{source.PropURLInfoAbout, source.PropHelpLink} {
		if p.URL != "" {
			break
		}
		if u := d.info(guid, prop); validURL(u) {
			p.URL = u
		}
	}
	return p
}

func (d *MSI) detectProduct(guid string, store *inventory.Store, installedDirs []string) bool {
	id, linked := d.identity(guid)
	p := d.packageFor(id, guid)
	if err := d.env.Catalog.SavePackage(p); err != nil {
		logger.Debug("cannot save package metadata", logger.Fields{"package": p.Name, "error": err})
	}
	if !linked {
		d.env.register(id)
	}

	if r, ok := store.Find(id); ok && r.Installed() {
		return true
	}

	dir := trimDir(d.info(guid, source.PropInstallLocation))
	if dir != "" && fsutil.IsUnderOrEquals(dir, installedDirs) {
		dir = ""
	}

	store.FindOrCreate(id)
	store.SetDetectionInfo(id, NamespaceMSI+guid)

	if dir == "" || !fsutil.IsDir(d.env.FS, dir) {
		var err error
		dir, err = d.env.managedDir(p.Title, id.Version())
		if err != nil {
			logger.Warn("cannot create managed directory", logger.Fields{"product": guid, "error": err})
			return true
		}
	}

	log := "." + d.env.vendor() + `\UninstallMSI.log`
	err := d.env.writeUninstallScript(dir,
		"msiexec.exe /qn /norestart /Lime "+log+" /x"+guid,
		"set err=%errorlevel%",
		"type "+log,
		"rem 3010=restart required",
		"if %err% equ 3010 exit 0",
		"if %err% neq 0 exit %err%",
	)
	if err != nil {
		logger.Warn("cannot write uninstall script", logger.Fields{"product": guid, "error": err})
		return true
	}
	store.SetDirectory(id, dir)
	return true
}
