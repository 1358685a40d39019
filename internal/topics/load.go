package topics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Topics []Topic `yaml:"topics"`
}

// LoadFile reads a topic table from YAML:
//
//	topics:
//	  - name: Technology
//	    keywords: [software, hardware]
//
// An empty path returns DefaultTable.
func LoadFile(path string) ([]Topic, error) {
	if path == "" {
		return DefaultTable, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse topics file %s: %w", path, err)
	}
	if len(f.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s defines no topics", path)
	}
	for i, t := range f.Topics {
		if t.Name == "" || len(t.Keywords) == 0 {
			return nil, fmt.Errorf("topics file %s: entry %d needs a name and keywords", path, i+1)
		}
	}
	return f.Topics, nil
}
