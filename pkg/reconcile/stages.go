package reconcile

import (
	"github.com/spf13/afero"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/fsutil"
	"github.com/glorpus-work/tally/pkg/inventory"
)

// ScanExternalDeletions clears every installed record whose directory no
// longer exists. It returns the number of cleared records.
func ScanExternalDeletions(store *inventory.Store, fs afero.Fs) int {
	n := 0
	for _, r := range store.Records() {
		if !r.Installed() || fsutil.IsDir(fs, r.Directory) {
			continue
		}
		logger.Info("installation directory was deleted", logger.Fields{
			"package":   r.Identity.String(),
			"directory": r.Directory,
		})
		store.SetDirectory(r.Identity, "")
		n++
	}
	return n
}

// Conflate clears the directory of every installed record that equals or
// lies inside the directory of another installed record, so one physical
// installation is counted once. Records at root are exempt. Records are
// visited by identity; of two records sharing a directory the later one is
// cleared.
func Conflate(store *inventory.Store, root string) int {
	var recs []inventory.Record
	for _, r := range store.Records() {
		if r.Installed() && (root == "" || !fsutil.PathEquals(r.Directory, root)) {
			recs = append(recs, r)
		}
	}

	cleared := make([]bool, len(recs))
	n := 0
	drop := func(i int, outer inventory.Record) {
		logger.Debug("clearing nested installation", logger.Fields{
			"package":   recs[i].Identity.String(),
			"directory": recs[i].Directory,
			"inside":    outer.Identity.String(),
		})
		store.SetDirectory(recs[i].Identity, "")
		cleared[i] = true
		n++
	}

	for i := range recs {
		for k := i + 1; k < len(recs) && !cleared[i]; k++ {
			if cleared[k] {
				continue
			}
			a, b := recs[i].Directory, recs[k].Directory
			switch {
			case fsutil.PathEquals(a, b) || fsutil.IsUnder(b, a):
				drop(k, recs[i])
			case fsutil.IsUnder(a, b):
				drop(i, recs[k])
			}
		}
	}
	return n
}
