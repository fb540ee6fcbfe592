// Package policy holds the static tables that shape a reply: the safety
// phrases that bypass analysis, the empathy prefixes and the agent's own
// reaction to each user emotion.
package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

var ErrEmptyTable = errors.New("policy: table has no danger phrases or reactions")

// Table is immutable once loaded and safe for concurrent reads.
type Table struct {
	dangerPhrases []string
	prefixes      map[Emotion]string
	reactions     map[Emotion]Emotion
}

type tableFile struct {
	DangerPhrases []string          `yaml:"danger_phrases"`
	Prefixes      map[string]string `yaml:"prefixes"`
	Reactions     map[string]string `yaml:"reactions"`
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded table: %v", err))
	}
	return t
}

// Load reads a table from a YAML file. An empty path yields the default table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}

	t, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("policy: %s: %w", path, err)
	}
	return t, nil
}

// Parse builds a table from YAML. Keys that are not one of the six emotions
// are rejected so a typo cannot silently disable a mapping.
func Parse(b []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(f.DangerPhrases) == 0 || len(f.Reactions) == 0 {
		return nil, ErrEmptyTable
	}

	t := Table{
		prefixes:  make(map[Emotion]string, len(f.Prefixes)),
		reactions: make(map[Emotion]Emotion, len(f.Reactions)),
	}

	for _, p := range f.DangerPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			t.dangerPhrases = append(t.dangerPhrases, p)
		}
	}

	for k, v := range f.Prefixes {
		e := Emotion(k)
		if !e.Valid() {
			return nil, fmt.Errorf("prefix for unknown emotion %q", k)
		}
		t.prefixes[e] = v
	}

	for k, v := range f.Reactions {
		from, to := Emotion(k), Emotion(v)
		if !from.Valid() || !to.Valid() {
			return nil, fmt.Errorf("reaction %q -> %q uses an unknown emotion", k, v)
		}
		t.reactions[from] = to
	}

	return &t, nil
}

// IsCrisis reports whether text contains any danger phrase, ignoring case.
func (t *Table) IsCrisis(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range t.dangerPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Prefix returns the empathy prefix for e, or "" when none is registered.
func (t *Table) Prefix(e Emotion) string {
	return t.prefixes[e]
}

// Reaction returns the emotion the agent shows in response to e.
func (t *Table) Reaction(e Emotion) Emotion {
	if r, ok := t.reactions[e]; ok {
		return r
	}
	return Neutral
}
