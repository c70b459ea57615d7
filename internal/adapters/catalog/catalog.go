package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

//go:embed default_badges.yaml
var defaultCatalog []byte

type catalogFile struct {
	Badges []domain.Badge `yaml:"badges"`
}

// Load reads the catalog at path, or the bundled one when path is empty.
func Load(path string) (*domain.BadgeCatalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*domain.BadgeCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: invalid yaml: %w", err)
	}
	return domain.NewBadgeCatalog(f.Badges)
}
