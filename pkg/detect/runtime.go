package detect

import (
	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/fsutil"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/model"
	"github.com/glorpus-work/tally/pkg/source"
)

// Runtime detects Java runtimes registered under a JavaSoft key, once per
// registry view.
type Runtime struct {
	env      *Env
	name     string
	path     string
	packages map[source.View]string
}

// NewJRE detects Java Runtime Environments.
func NewJRE(env *Env) *Runtime {
	return &Runtime{
		env:  env,
		name: "jre",
		path: `Software\JavaSoft\Java Runtime Environment`,
		packages: map[source.View]string{
			source.View32: "com.oracle.JRE",
			source.View64: "com.oracle.JRE64",
		},
	}
}

// NewJDK detects Java Development Kits.
func NewJDK(env *Env) *Runtime {
	return &Runtime{
		env:  env,
		name: "jdk",
		path: `Software\JavaSoft\Java Development Kit`,
		packages: map[source.View]string{
			source.View32: "com.oracle.JDK",
			source.View64: "com.oracle.JDK64",
		},
	}
}

// Name implements Detector.
func (d *Runtime) Name() string { return d.name }

type runtimeHit struct {
	id  model.Identity
	dir string
}

// Detect implements Detector. The views are probed concurrently; the store
// is written afterwards in view order.
func (d *Runtime) Detect(j job.Job, store *inventory.Store) (Report, error) {
	views := []source.View{source.View32}
	if d.env.Platform.Is64Bit() {
		views = append(views, source.View64)
	}

	hits := make([][]runtimeHit, len(views))
	g, ctx := errgroup.WithContext(j.Context())
	for i, view := range views {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			hits[i] = d.probe(view)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var rep Report
	for _, list := range hits {
		for _, h := range list {
			d.env.register(h.id)
			store.SetDirectoryIfNotInstalled(h.id, h.dir)
			rep.Observed++
		}
	}
	j.Complete()
	return rep, nil
}

func (d *Runtime) probe(view source.View) []runtimeHit {
	root, err := d.env.Registry.Open(source.LocalMachine, d.path, view)
	if err != nil {
		logger.Debug("runtime key not present", logger.Fields{"detector": d.name, "view": view.String()})
		return nil
	}
	defer func() { _ = root.Close() }()

	names, err := root.SubKeyNames()
	if err != nil {
		logger.Warn("cannot enumerate runtime versions", logger.Fields{"detector": d.name, "error": err})
		return nil
	}

	var hits []runtimeHit
	for _, name := range names {
		v, err := model.ParseVersion(name)
		// the root key also holds entries like "1.8" and "CurrentVersion"
		if err != nil || v.PartCount() <= 2 {
			continue
		}
		k, err := root.OpenSubKey(name)
		if err != nil {
			continue
		}
		home, err := k.String("JavaHome")
		_ = k.Close()
		if err != nil || !fsutil.IsDir(d.env.FS, home) {
			continue
		}
		hits = append(hits, runtimeHit{id: model.NewIdentity(d.packages[view], v), dir: home})
	}
	return hits
}
