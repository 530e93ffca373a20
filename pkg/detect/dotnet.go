package detect

import (
	"strings"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/model"
	"github.com/glorpus-work/tally/pkg/source"
)

const dotNetPackage = "com.microsoft.DotNetRedistributable"

var (
	dotNet11 = model.NewVersion(1, 1)
	dotNet2  = model.NewVersion(2)
	dotNet4  = model.NewVersion(4)
)

// DotNet detects .NET Framework releases from the NDP setup key.
type DotNet struct {
	env *Env
}

// NewDotNet creates the .NET detector.
func NewDotNet(env *Env) *DotNet {
	return &DotNet{env: env}
}

// Name implements Detector.
func (d *DotNet) Name() string { return "dotnet" }

// Detect implements Detector.
func (d *DotNet) Detect(j job.Job, store *inventory.Store) (Report, error) {
	root, err := d.env.Registry.Open(source.LocalMachine, `Software\Microsoft\NET Framework Setup\NDP`, source.ViewDefault)
	if err != nil {
		logger.Debug(".NET setup key not present")
		j.Complete()
		return Report{}, nil
	}
	defer func() { _ = root.Close() }()

	names, err := root.SubKeyNames()
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for _, name := range names {
		if !strings.HasPrefix(name, "v") {
			continue
		}
		keyVersion, err := model.ParseVersion(name[1:])
		if err != nil {
			continue
		}
		k, err := root.OpenSubKey(name)
		if err != nil {
			continue
		}
		v, ok := dotNetVersion(k, keyVersion)
		_ = k.Close()
		if !ok {
			continue
		}
		id := model.NewIdentity(dotNetPackage, v)
		d.env.register(id)
		store.SetDirectoryIfNotInstalled(id, d.env.Platform.Root())
		rep.Observed++
	}
	j.Complete()
	return rep, nil
}

// dotNetVersion: below 1.1 unsupported, below 2.0 the key name is the
// version, below 4.0 the Version value, from 4.0 on Full\Version.
func dotNetVersion(k source.Key, keyVersion model.Version) (model.Version, bool) {
	switch {
	case keyVersion.Compare(dotNet11) < 0:
		return model.Version{}, false
	case keyVersion.Compare(dotNet2) < 0:
		return keyVersion, true
	case keyVersion.Compare(dotNet4) < 0:
		return parsedString(k, "Version")
	default:
		full, err := k.OpenSubKey("Full")
		if err != nil {
			return model.Version{}, false
		}
		defer func() { _ = full.Close() }()
		return parsedString(full, "Version")
	}
}

func parsedString(k source.Key, name string) (model.Version, bool) {
	s, err := k.String(name)
	if err != nil {
		return model.Version{}, false
	}
	v, err := model.ParseVersion(s)
	if err != nil {
		return model.Version{}, false
	}
	return v, true
}
