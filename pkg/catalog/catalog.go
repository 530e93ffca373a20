// Package catalog is the package metadata repository: titles, URLs and
// descriptions of packages, and the versions known for each of them.
package catalog

import "github.com/glorpus-work/tally/pkg/model"

// Package holds the metadata of one package.
type Package struct {
	Name        string `yaml:"name" json:"name"`
	Title       string `yaml:"title" json:"title"`
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// PackageVersion is one known version of a package. ExternalID links it to
// an identifier of an outside source such as an MSI product code.
type PackageVersion struct {
	Package    string
	Version    model.Version
	ExternalID string
}

// Repository stores package metadata. Find methods return nil without an
// error when nothing matches.
//
//go:generate mockgen -destination=./mocks/repository.go -package=mocks . Repository
type Repository interface {
	// AddPackageVersion registers that name has version, creating the
	// package with its name as title if it is unknown.
	AddPackageVersion(name string, version model.Version) error
	FindPackage(name string) (*Package, error)
	FindPackageVersion(name string, version model.Version) (*PackageVersion, error)
	FindPackageVersionByExternalID(id string) (*PackageVersion, error)
	SavePackage(p *Package) error
	SavePackageVersion(pv *PackageVersion) error
}
