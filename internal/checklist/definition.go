package checklist

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type definitionFile struct {
	Checklists []definition `yaml:"checklists"`
}

type definition struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// ParseDefinitions reads checklists written by hand in YAML:
//
//	checklists:
//	  - name: Groceries
//	    items: [Buy milk, Buy eggs]
func ParseDefinitions(r io.Reader) ([]Checklist, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file definitionFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse checklist definitions: %w", err)
	}

	out := make([]Checklist, 0, len(file.Checklists))
	for i, d := range file.Checklists {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("checklist definition %d has no name", i+1)
		}
		out = append(out, New(name, d.Items...))
	}
	return out, nil
}
