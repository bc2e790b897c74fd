package catalog

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/dailyboss/internal/domain/model"
)

// fileLayout is the YAML shape of a catalog file:
//
//	regions:
//	  - name: Mondstadt
//	    items:
//	      - name: Cryo Regisvine
//	        weight: 5
type fileLayout struct {
	Regions []struct {
		Name  string `koanf:"name"`
		Items []struct {
			Name   string `koanf:"name"`
			Weight int    `koanf:"weight"`
		} `koanf:"items"`
	} `koanf:"regions"`
}

// LoadFile reads a YAML catalog file.
func LoadFile(_ context.Context, path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
	}

	var layout fileLayout
	if err := k.UnmarshalWithConf("", &layout, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
	}

	regions := make([]Region, 0, len(layout.Regions))
	for _, r := range layout.Regions {
		region := Region{Name: r.Name}
		for _, it := range r.Items {
			region.Items = append(region.Items, model.Item{Name: it.Name, Weight: it.Weight})
		}
		regions = append(regions, region)
	}
	return New(regions)
}
