//go:build ignore

// Package main generates a synthetic corpus in the layout indexbench reads:
// <output>/<section>/article<N>.txt, first line a title, the rest body text.
// Usage: go run scripts/generate-corpus.go -articles 10000 -sections 20 -output extracted_corpus
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numArticles = flag.Int("articles", 1000, "Number of articles to generate")
	numSections = flag.Int("sections", 10, "Number of section subdirectories")
	minLines    = flag.Int("min-lines", 5, "Minimum body lines per article")
	maxLines    = flag.Int("max-lines", 60, "Maximum body lines per article")
	outputDir   = flag.String("output", "extracted_corpus", "Output directory")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// words is the vocabulary body text is drawn from.
var words = strings.Fields(`
	government market company report percent people year week official
	analyst bank share price rate growth trade policy minister election
	court company investor quarter profit revenue industry energy oil
	dollar economy plan council state city union agreement talks support
	president spokesman statement said would could also about after before
	increase decline demand supply forecast estimate record level index
`)

func main() {
	flag.Parse()

	if *numSections < 1 || *numArticles < 0 || *minLines < 0 || *maxLines < *minLines {
		fmt.Fprintln(os.Stderr, "invalid arguments")
		os.Exit(2)
	}

	rng := rand.New(rand.NewSource(*seed))

	for s := 0; s < *numSections; s++ {
		dir := filepath.Join(*outputDir, fmt.Sprintf("section%03d", s))
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	var total int64
	for i := 0; i < *numArticles; i++ {
		dir := filepath.Join(*outputDir, fmt.Sprintf("section%03d", i%*numSections))
		path := filepath.Join(dir, fmt.Sprintf("article%06d.txt", i))

		content := article(rng)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		total += int64(len(content))
	}

	fmt.Printf("Generated %d articles in %d sections under %s (%d bytes)\n",
		*numArticles, *numSections, *outputDir, total)
}

// article returns a title line followed by body lines.
func article(rng *rand.Rand) string {
	var sb strings.Builder

	sb.WriteString(strings.ToUpper(sentence(rng, 4+rng.Intn(6))))
	sb.WriteByte('\n')

	lines := *minLines + rng.Intn(*maxLines-*minLines+1)
	for l := 0; l < lines; l++ {
		sb.WriteString(sentence(rng, 8+rng.Intn(10)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func sentence(rng *rand.Rand, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[rng.Intn(len(words))]
	}
	return strings.Join(parts, " ")
}
