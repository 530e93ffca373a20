package platform

import (
	"strings"

	"github.com/glorpus-work/tally/pkg/model"
)

// Static is an Info with fixed answers, used for snapshot replays and tests.
type Static struct {
	OS      string
	Version string
	RootDir string
	Bits64  bool
	// Files maps DLL names (case-insensitive) to version strings.
	Files map[string]string
}

// Name implements Info.
func (s *Static) Name() string { return NormalizeOS(s.OS) }

// OSVersion implements Info.
func (s *Static) OSVersion() (model.Version, error) {
	return model.ParseVersion(s.Version)
}

// Root implements Info.
func (s *Static) Root() string { return s.RootDir }

// Is64Bit implements Info.
func (s *Static) Is64Bit() bool { return s.Bits64 }

// FileVersion implements Info.
func (s *Static) FileVersion(dll string) model.Version {
	for name, v := range s.Files {
		if strings.EqualFold(name, dll) {
			parsed, err := model.ParseVersion(v)
			if err != nil {
				return model.Version{}
			}
			return parsed
		}
	}
	return model.Version{}
}
