package configs

import (
	"os"
	"path/filepath"

	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
}

// Files lists the configuration files to load, highest precedence first.
type Files []string

const FileName = "relic.cue"

func (Module) Files() (ret Files) {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "relic", FileName))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			ret = append(ret, path)
		}
	}
	return
}
