// Package chunker provides a sentence-aligned text chunking processor.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

// DefaultMaxWords is the soft word cap per chunk.
const DefaultMaxWords = 150

// DefaultMinChars is the exclusive lower bound on emitted chunk length.
const DefaultMinChars = 30

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

var (
	whitespace = regexp.MustCompile(`\s+`)

	// A sentence ends at . ! or ?, optionally followed by closing quotes or
	// brackets, when whitespace or end of text follows.
	sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*(\s|$)`)
)

// Processor packs whole sentences into chunks of at most maxWords words.
// A single sentence longer than maxWords is kept whole.
type Processor struct {
	maxWords int
	minChars int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxWords sets the soft word cap.
func WithMaxWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxWords = n
		}
	}
}

// WithMinChars sets the minimum chunk length; chunks of this length or shorter are dropped.
func WithMinChars(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minChars = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxWords: DefaultMaxWords,
		minChars: DefaultMinChars,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkPages chunks each page independently and concatenates the results.
func (p *Processor) ChunkPages(ctx context.Context, pages []string) ([]string, error) {
	var out []string
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, p.ChunkPage(page)...)
	}
	return out, nil
}

// ChunkPage normalises whitespace in one page and packs its sentences.
func (p *Processor) ChunkPage(page string) []string {
	text := strings.TrimSpace(whitespace.ReplaceAllString(page, " "))
	if text == "" {
		return nil
	}

	var (
		chunks  []string
		current []string
		words   int
	)
	seal := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.Join(current, " ")
		if utf8.RuneCountInString(chunk) > p.minChars {
			chunks = append(chunks, chunk)
		}
		current = current[:0]
		words = 0
	}

	for _, sentence := range SplitSentences(text) {
		n := len(strings.Fields(sentence))
		if len(current) > 0 && words+n > p.maxWords {
			seal()
		}
		current = append(current, sentence)
		words += n
	}
	seal()

	return chunks
}

// SplitSentences splits whitespace-normalised text on sentence terminators.
// Text after the last terminator forms a final sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
