// Package scanner discovers the benchmark corpus.
// It lists every subdirectory of the corpus root, keeps the entries whose
// name contains "article", and orders the result lexically so that repeated
// runs process documents in the same sequence.
package scanner

// ArticleMarker is the substring an entry name must contain to be part of the corpus.
const ArticleMarker = "article"

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// Workers is the number of subdirectories listed concurrently (0 = NumCPU).
	Workers int

	// Marker overrides ArticleMarker. Empty uses ArticleMarker.
	Marker string
}

// Corpus is the ordered, fully materialized list of document references.
// It is shared read-only by every repetition of a run.
type Corpus struct {
	// Root is the corpus root directory as given to Scan.
	Root string

	paths []string
}

// NewCorpus builds a corpus from already ordered paths.
func NewCorpus(root string, paths []string) *Corpus {
	cp := make([]string, len(paths))
	copy(cp, paths)
	return &Corpus{Root: root, paths: cp}
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int {
	return len(c.paths)
}

// At returns the i-th document path.
func (c *Corpus) At(i int) string {
	return c.paths[i]
}

// Paths returns a copy of the ordered document paths.
func (c *Corpus) Paths() []string {
	cp := make([]string, len(c.paths))
	copy(cp, c.paths)
	return cp
}
