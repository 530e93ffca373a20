package catalog

import (
	"net/url"
	"sync"

	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/model"
)

// Persisted layout:
//
//	Catalog/Packages/<name>                    Title, URL, Description
//	Catalog/Packages/<name>/Versions/<version> ExternalID
//	Catalog/ExternalIDs/<escaped id>           Package, Version
const (
	rootKey        = "Catalog"
	packagesKey    = rootKey + "/Packages"
	externalIDsKey = rootKey + "/ExternalIDs"
	versionsKey    = "Versions"

	valueTitle       = "Title"
	valueURL         = "URL"
	valueDescription = "Description"
	valueExternalID  = "ExternalID"
	valuePackage     = "Package"
	valueVersion     = "Version"
)

// KVRepository is a Repository persisted into a kvstore.
type KVRepository struct {
	mu sync.Mutex
	kv kvstore.Store
}

// NewKVRepository creates a repository persisting into kv.
func NewKVRepository(kv kvstore.Store) *KVRepository {
	return &KVRepository{kv: kv}
}

func packageKey(name string) string {
	return kvstore.Join(packagesKey, name)
}

func versionKey(name string, v model.Version) string {
	return kvstore.Join(packagesKey, name, versionsKey, v.Normalize().String())
}

func externalKey(id string) string {
	return kvstore.Join(externalIDsKey, url.PathEscape(id))
}

// AddPackageVersion implements Repository.
func (r *KVRepository) AddPackageVersion(name string, version model.Version) error {
	if err := model.ValidatePackageName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := r.kv.KeyExists(packageKey(name))
	if err != nil {
		return err
	}
	if !ok {
		if err := r.writePackage(&Package{Name: name, Title: name}); err != nil {
			return err
		}
	}
	vk := versionKey(name, version)
	ok, err = r.kv.KeyExists(vk)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return wrapWrite(vk, r.kv.CreateKey(vk))
}

// FindPackage implements Repository.
func (r *KVRepository) FindPackage(name string) (*Package, error) {
	if model.ValidatePackageName(name) != nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := packageKey(name)
	ok, err := r.kv.KeyExists(key)
	if err != nil || !ok {
		return nil, err
	}
	return &Package{
		Name:        name,
		Title:       r.optional(key, valueTitle),
		URL:         r.optional(key, valueURL),
		Description: r.optional(key, valueDescription),
	}, nil
}

// FindPackageVersion implements Repository.
func (r *KVRepository) FindPackageVersion(name string, version model.Version) (*PackageVersion, error) {
	if model.ValidatePackageName(name) != nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findVersionLocked(name, version)
}

func (r *KVRepository) findVersionLocked(name string, version model.Version) (*PackageVersion, error) {
	key := versionKey(name, version)
	ok, err := r.kv.KeyExists(key)
	if err != nil || !ok {
		return nil, err
	}
	return &PackageVersion{
		Package:    name,
		Version:    version.Normalize(),
		ExternalID: r.optional(key, valueExternalID),
	}, nil
}

// FindPackageVersionByExternalID implements Repository.
func (r *KVRepository) FindPackageVersionByExternalID(id string) (*PackageVersion, error) {
	if id == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := externalKey(id)
	name, err := r.kv.GetString(key, valuePackage)
	if errors.Is(err, errors.ErrValueNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := r.kv.GetString(key, valueVersion)
	if err != nil {
		return nil, nil
	}
	v, err := model.ParseVersion(raw)
	if err != nil {
		return nil, nil
	}
	return r.findVersionLocked(name, v)
}

// SavePackage implements Repository.
func (r *KVRepository) SavePackage(p *Package) error {
	if p == nil {
		return nil
	}
	if err := model.ValidatePackageName(p.Name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writePackage(p)
}

func (r *KVRepository) writePackage(p *Package) error {
	key := packageKey(p.Name)
	for name, value := range map[string]string{
		valueTitle:       p.Title,
		valueURL:         p.URL,
		valueDescription: p.Description,
	} {
		if err := r.kv.SetString(key, name, value); err != nil {
			return wrapWrite(key, err)
		}
	}
	return nil
}

// SavePackageVersion implements Repository. The package is created if it
// does not exist yet.
func (r *KVRepository) SavePackageVersion(pv *PackageVersion) error {
	if pv == nil {
		return nil
	}
	if err := model.ValidatePackageName(pv.Package); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := r.kv.KeyExists(packageKey(pv.Package))
	if err != nil {
		return err
	}
	if !ok {
		if err := r.writePackage(&Package{Name: pv.Package, Title: pv.Package}); err != nil {
			return err
		}
	}

	vk := versionKey(pv.Package, pv.Version)
	if err := r.kv.SetString(vk, valueExternalID, pv.ExternalID); err != nil {
		return wrapWrite(vk, err)
	}
	if pv.ExternalID == "" {
		return nil
	}
	ek := externalKey(pv.ExternalID)
	if err := r.kv.SetString(ek, valuePackage, pv.Package); err != nil {
		return wrapWrite(ek, err)
	}
	return wrapWrite(ek, r.kv.SetString(ek, valueVersion, pv.Version.Normalize().String()))
}

func (r *KVRepository) optional(key, name string) string {
	v, err := r.kv.GetString(key, name)
	if err != nil {
		return ""
	}
	return v
}

func wrapWrite(key string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(errors.ErrPersistenceWrite, "%s: %v", key, err)
}
