package lane

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// fileCatalog is the on-disk lanes.toml shape. Only labels and colors can be
// overridden; the lane set itself is closed.
type fileCatalog struct {
	Palette filePalette         `toml:"palette"`
	Lanes   map[string]fileLane `toml:"lanes"`
}

type filePalette struct {
	Held      string `toml:"held"`
	Released  string `toml:"released"`
	Operation string `toml:"operation"`
	Deceased  string `toml:"deceased"`
	Accent    string `toml:"accent"`
	Returned  string `toml:"returned"`
	Unknown   string `toml:"unknown"`
}

type fileLane struct {
	Label string `toml:"label"`
	Color string `toml:"color"`
}

// LoadFile reads a TOML theme file and applies its label, color, and palette
// overrides over the default catalog. Referencing a lane id outside the
// catalog is an error, as is any color that does not parse as hex.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var fc fileCatalog
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Catalog{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	cat := Default()
	overlay(&cat.palette.Held, fc.Palette.Held)
	overlay(&cat.palette.Released, fc.Palette.Released)
	overlay(&cat.palette.Operation, fc.Palette.Operation)
	overlay(&cat.palette.Deceased, fc.Palette.Deceased)
	overlay(&cat.palette.Accent, fc.Palette.Accent)
	overlay(&cat.palette.Returned, fc.Palette.Returned)
	overlay(&cat.palette.Unknown, fc.Palette.Unknown)

	for id, fl := range fc.Lanes {
		i, ok := cat.index[ID(id)]
		if !ok {
			return Catalog{}, fmt.Errorf("%w: %q in %s", ErrUnknownLane, id, path)
		}
		overlay(&cat.defs[i].Label, fl.Label)
		overlay(&cat.defs[i].Color, fl.Color)
	}

	if err := cat.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// overlay replaces *dst with v when v is set.
func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
