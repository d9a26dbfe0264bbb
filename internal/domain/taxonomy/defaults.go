package taxonomy

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type defaultsFile struct {
	Industries []struct {
		ID        string          `yaml:"id"`
		Names     map[Lang]string `yaml:"names"`
		WorkTypes []struct {
			ID    string          `yaml:"id"`
			Names map[Lang]string `yaml:"names"`
		} `yaml:"workTypes"`
	} `yaml:"industries"`
	Messages map[Lang]map[string]any `yaml:"messages"`
}

// DefaultDocuments builds the locale documents used when no locale files
// exist yet.
func DefaultDocuments(langs []Lang) (map[Lang]Document, error) {
	var f defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &f); err != nil {
		return nil, fmt.Errorf("decode default taxonomy: %w", err)
	}
	if len(langs) == 0 {
		langs = DefaultLanguages
	}

	docs := make(map[Lang]Document, len(langs))
	for _, l := range langs {
		doc := Document(cloneMap(f.Messages[l]))
		industries := doc.ensure(rootKey, industriesKey)
		groups := doc.ensure(rootKey, workTypesKey)
		for _, ind := range f.Industries {
			industries[ind.ID] = nameFor(ind.Names, l)
			group := map[string]any{}
			for _, wt := range ind.WorkTypes {
				group[wt.ID] = nameFor(wt.Names, l)
			}
			groups[ind.ID] = group
		}
		docs[l] = doc
	}
	return docs, nil
}

// nameFor falls back to English for languages the defaults do not cover.
func nameFor(names map[Lang]string, l Lang) string {
	if n := names[l]; n != "" {
		return n
	}
	return names[EN]
}
