package extract

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// pageRefTail matches the page number at the end of an agenda line, allowing
// dot leaders or whitespace between the heading and the number.
const pageRefTail = `[^\n]{0,60}?(\d{1,3})\b`

// Topic pairs a section name with the regexp that finds its agenda entry.
// Pattern matches the heading only; pageRefTail is appended at compile time.
type Topic struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// builtinTopics are the sections every board pack is probed for, in the
// order their extracts are added to the corpus.
var builtinTopics = []Topic{
	{Name: "ceo_report", Pattern: `chief executive`},
	{Name: "finance", Pattern: `finance report`},
	{Name: "performance", Pattern: `(?:integrated performance|ipr|performance report)`},
	{Name: "quality", Pattern: `quality`},
	{Name: "workforce", Pattern: `(?:people committee|workforce)`},
}

// compiledTopic is a topic with its agenda regexp ready to run.
type compiledTopic struct {
	name string
	re   *regexp.Regexp
}

// compileTopics validates and compiles built-in plus extra topics. Extra
// topics are appended after the built-ins so their extracts rank behind the
// standard sections in the corpus. Duplicate names are rejected.
func compileTopics(extra []Topic) ([]compiledTopic, error) {
	all := make([]Topic, 0, len(builtinTopics)+len(extra))
	all = append(all, builtinTopics...)
	all = append(all, extra...)

	seen := make(map[string]bool, len(all))
	compiled := make([]compiledTopic, 0, len(all))
	for _, t := range all {
		if t.Name == "" || t.Pattern == "" {
			return nil, eris.New("extract: topic name and pattern must be non-empty")
		}
		if seen[t.Name] {
			return nil, eris.Errorf("extract: duplicate topic %q", t.Name)
		}
		seen[t.Name] = true

		re, err := regexp.Compile(t.Pattern + pageRefTail)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: compile topic %q", t.Name)
		}
		compiled = append(compiled, compiledTopic{name: t.Name, re: re})
	}
	return compiled, nil
}

// topicsFile is the on-disk shape of a custom topics file.
type topicsFile struct {
	Topics []Topic `yaml:"topics"`
}

// loadTopicsFile reads extra topics from a YAML file.
func loadTopicsFile(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read topics file %s", path)
	}
	var tf topicsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, eris.Wrapf(err, "extract: parse topics file %s", path)
	}
	return tf.Topics, nil
}
