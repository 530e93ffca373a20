// Package detect gathers installation evidence from OS sources. Each
// Detector reports what it saw into the inventory store; detectors that own
// a provenance namespace also clear their own stale records.
package detect

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/catalog"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/model"
	"github.com/glorpus-work/tally/pkg/platform"
	"github.com/glorpus-work/tally/pkg/source"
)

// Provenance namespaces.
const (
	NamespaceMSI          = "msi:"
	NamespaceControlPanel = "control-panel:"
)

// DefaultVendorTag names the managed "<tag>Detected" directory and the
// ".<tag>" script folder.
const DefaultVendorTag = "Tally"

// Detector is one evidence source.
type Detector interface {
	Name() string
	// Detect records observations into store. A returned error means the
	// source could not be queried; observations made before the failure
	// stay recorded.
	Detect(j job.Job, store *inventory.Store) (Report, error)
}

// Report summarizes one sweep.
type Report struct {
	Observed int
	Cleared  int
}

// Env holds the collaborators detectors read from and write to. All
// collaborators are required; see Validate.
type Env struct {
	Catalog  catalog.Repository `validate:"required"`
	Registry source.Registry    `validate:"required"`
	MSI      source.MSI         `validate:"required"`
	Platform platform.Info      `validate:"required"`
	FS       afero.Fs           `validate:"required"`
	// InstallDir is the root below which managed directories are created.
	InstallDir string
	VendorTag  string
}

func (e *Env) vendor() string {
	if e.VendorTag == "" {
		return DefaultVendorTag
	}
	return e.VendorTag
}

// Sweep returns the detectors of a full sweep in their fixed order.
func Sweep(env *Env) []Detector {
	return []Detector{
		NewOSIdentity(env),
		NewJRE(env),
		NewJDK(env),
		NewDotNet(env),
		NewMSI(env),
		NewControlPanel(env),
		NewWindowsInstaller(env),
		NewMSXML(env),
	}
}

// Validate reports a missing collaborator.
func (e *Env) Validate() error {
	if e == nil {
		return errors.Wrap(errors.ErrInvalidEnv, "no environment")
	}
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Wrapf(errors.ErrInvalidEnv, "%s is required", verrs[0].Field())
		}
		return errors.Wrap(errors.ErrInvalidEnv, err.Error())
	}
	return nil
}

// register makes version known to the catalog. Failures only lose metadata.
func (e *Env) register(id model.Identity) {
	if err := e.Catalog.AddPackageVersion(id.Package(), id.Version()); err != nil {
		logger.Debug("cannot register package version", logger.Fields{"package": id.String(), "error": err})
	}
}

var validate = validator.New()

// validURL reports whether s is a well-formed absolute URL.
func validURL(s string) bool {
	return s != "" && validate.Var(s, "required,url") == nil
}

// clearStale empties the directory of every installed record owned by
// namespace whose tag keep rejects.
func clearStale(store *inventory.Store, namespace string, keep func(tag string) bool) int {
	cleared := 0
	for _, r := range store.Records() {
		if !r.Installed() || !r.HasProvenance(namespace) || keep(r.DetectionInfo) {
			continue
		}
		logger.Info("software no longer present", logger.Fields{
			"package":   r.Identity.String(),
			"directory": r.Directory,
			"source":    r.DetectionInfo,
		})
		store.SetDirectory(r.Identity, "")
		cleared++
	}
	return cleared
}
