package source

import (
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/tally/pkg/errors"
)

// Snapshot is a recorded set of OS evidence that can replace the live
// sources, so a reconciliation pass can be replayed on any machine.
type Snapshot struct {
	Platform PlatformFacts  `yaml:"platform"`
	Registry []RegistryTree `yaml:"registry,omitempty"`
	MSI      []MSIProduct   `yaml:"msi,omitempty"`
}

// PlatformFacts describes the machine a snapshot was taken on.
type PlatformFacts struct {
	Name      string `yaml:"name"`
	OSVersion string `yaml:"os_version"`
	Root      string `yaml:"root"`
	Is64Bit   bool   `yaml:"is_64bit"`
	// FileVersions maps system DLL names to their file versions.
	FileVersions map[string]string `yaml:"file_versions,omitempty"`
}

// RegistryTree is one subtree rooted at Hive\Path in the given View.
type RegistryTree struct {
	Hive string          `yaml:"hive"`
	View string          `yaml:"view,omitempty"`
	Path string          `yaml:"path"`
	Keys map[string]Node `yaml:"keys,omitempty"`
}

// Node is a key with its values and children.
type Node struct {
	Strings map[string]string `yaml:"strings,omitempty"`
	DWords  map[string]uint32 `yaml:"dwords,omitempty"`
	Keys    map[string]Node   `yaml:"keys,omitempty"`
}

// MSIProduct is one installer product with its properties.
type MSIProduct struct {
	Code       string            `yaml:"code"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// LoadSnapshot reads a YAML snapshot from path.
func LoadSnapshot(fs afero.Fs, path string) (*Snapshot, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "read snapshot %s: %v", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(errors.ErrParse, "decode snapshot %s: %v", path, err)
	}
	return &snap, nil
}

// Build materializes the snapshot into in-memory sources.
func (s *Snapshot) Build() (*MemoryRegistry, *MemoryMSI, error) {
	reg := NewMemoryRegistry()
	for _, tree := range s.Registry {
		hive, err := ParseHive(tree.Hive)
		if err != nil {
			return nil, nil, err
		}
		view, err := ParseView(tree.View)
		if err != nil {
			return nil, nil, err
		}
		reg.CreateKey(hive, view, tree.Path)
		fillKeys(reg, hive, view, tree.Path, tree.Keys)
	}

	msi := NewMemoryMSI()
	for _, p := range s.MSI {
		if p.Code == "" {
			return nil, nil, errors.Wrap(errors.ErrParse, "snapshot MSI product without code")
		}
		msi.AddProduct(p.Code, p.Properties)
	}
	return reg, msi, nil
}

func fillKeys(reg *MemoryRegistry, hive Hive, view View, parent string, keys map[string]Node) {
	for name, node := range keys {
		path := JoinPath(parent, name)
		reg.CreateKey(hive, view, path)
		for k, v := range node.Strings {
			reg.SetString(hive, view, path, k, v)
		}
		for k, v := range node.DWords {
			reg.SetUint32(hive, view, path, k, v)
		}
		fillKeys(reg, hive, view, path, node.Keys)
	}
}
