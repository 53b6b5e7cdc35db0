package discovery

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultQueries are the search phrases run when no query file is configured.
var DefaultQueries = []string{
	"honey festival 2026 United States upcoming event",
	"beekeeping workshop class 2026 USA apiary",
	"honey tasting event 2026 United States",
	"beekeeper tour apiary visit 2026 USA",
	"honey farmers market fair 2026 United States",
}

type queryFile struct {
	Queries []string `yaml:"queries"`
}

// LoadQueries reads the query list from a YAML file of the form
//
//	queries:
//	  - honey festival 2026 United States
//
// An empty path returns DefaultQueries. Blank entries are dropped and a file
// with no queries is an error.
func LoadQueries(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), DefaultQueries...), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query file: %w", err)
	}

	var qf queryFile
	if err := yaml.Unmarshal(raw, &qf); err != nil {
		return nil, fmt.Errorf("parse query file %s: %w", path, err)
	}

	queries := make([]string, 0, len(qf.Queries))
	for _, q := range qf.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("query file %s has no queries", path)
	}

	return queries, nil
}
