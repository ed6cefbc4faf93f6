package extract

// Section is one extracted slice of a document, keyed by document label and
// topic (for example "board_pack.pdf__finance" or "board_pack.pdf__part_2").
type Section struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Corpus holds extracted sections in the order they were produced. Order is
// part of the contract: prompt assembly walks the corpus front to back, so
// earlier sections survive the character budget.
type Corpus struct {
	sections []Section
}

// Add appends a section to the corpus.
func (c *Corpus) Add(key, text string) {
	c.sections = append(c.sections, Section{Key: key, Text: text})
}

// Sections returns the sections in insertion order.
func (c *Corpus) Sections() []Section {
	return c.sections
}

// Len returns the number of sections.
func (c *Corpus) Len() int {
	return len(c.sections)
}
