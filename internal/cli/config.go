package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seqgen/pkg/errors"
)

// configFileName is the default configuration file looked up in the
// working directory.
const configFileName = "seqgen.toml"

// Config holds CLI defaults loaded from a seqgen.toml file. Every field
// is optional; command-line flags take precedence over config values.
type Config struct {
	PageName        string  `toml:"page_name"`
	IDPrefix        string  `toml:"id_prefix"`
	LifelineWidth   float64 `toml:"lifeline_width"`
	LifelineSpacing float64 `toml:"lifeline_spacing"`
	CacheDir        string  `toml:"cache_dir"`
}

// loadConfig reads configuration from path, or from seqgen.toml in the
// working directory when path is empty. A missing default file is not
// an error; an explicitly named file must exist.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = configFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}
