// Package genre maps free-text book requests to canonical catalog subjects.
package genre

import (
	_ "embed"
	"log"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLabel is returned when no phrase in the table matches.
const DefaultLabel = "fiction"

//go:embed genres.yaml
var genresYAML []byte

type entry struct {
	Genre   string   `yaml:"genre"`
	Phrases []string `yaml:"phrases"`
}

var (
	table   []entry
	punctRe = regexp.MustCompile(`[^\w\s]`)
)

func init() {
	if err := yaml.Unmarshal(genresYAML, &table); err != nil {
		// The table is embedded at build time, so this only fires on a
		// broken edit to genres.yaml.
		panic("genre: invalid embedded table: " + err.Error())
	}
}

// Extract returns the canonical subject label for a free-text request.
// The text is lowercased and stripped of punctuation, then tested against
// the phrase table in order; the first match wins. Inputs matching no
// phrase fall back to DefaultLabel.
func Extract(query string) string {
	cleaned := punctRe.ReplaceAllString(strings.ToLower(query), "")

	for _, e := range table {
		for _, phrase := range e.Phrases {
			if strings.Contains(cleaned, phrase) {
				return e.Genre
			}
		}
	}

	log.Printf("[WARN] no genre matched in query, falling back to %q", DefaultLabel)
	return DefaultLabel
}

// Labels returns the canonical labels in table order.
func Labels() []string {
	out := make([]string, 0, len(table))
	for _, e := range table {
		out = append(out, e.Genre)
	}
	return out
}
