package main

import (
	"flag"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// fileConfig mirrors the flag set. Keys absent from the file leave the
// flag's default alone, and flags given explicitly on the command line win
// over file values.
type fileConfig struct {
	Repeat        uint   `toml:"repeat"`
	All           bool   `toml:"all"`
	Debug         bool   `toml:"debug"`
	Emit          string `toml:"emit"`
	Format        string `toml:"format"`
	Unique        bool   `toml:"unique"`
	FilterBuckets string `toml:"filterbuckets"`
}

func loadConfig(path string) error {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	for _, key := range meta.Undecoded() {
		log.Warnf("Unknown config key: %q", key)
	}

	given := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		given[f.Name] = true
	})

	values := map[string]string{
		"repeat":        strconv.FormatUint(uint64(cfg.Repeat), 10),
		"all":           strconv.FormatBool(cfg.All),
		"debug":         strconv.FormatBool(cfg.Debug),
		"emit":          cfg.Emit,
		"format":        cfg.Format,
		"unique":        strconv.FormatBool(cfg.Unique),
		"filterbuckets": cfg.FilterBuckets,
	}

	for name, value := range values {
		if !meta.IsDefined(name) || given[name] {
			continue
		}

		if err := flag.Set(name, value); err != nil {
			return errors.Wrapf(err, "config key %q", name)
		}
	}

	return nil
}
