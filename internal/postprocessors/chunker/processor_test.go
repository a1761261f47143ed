package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// sentences returns n ten-word sentences, numbered so they are distinguishable.
func sentences(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d needs a reliable plumber to fix the kitchen sink.", prefix, i)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.maxWords != DefaultMaxWords {
			t.Errorf("expected maxWords %d, got %d", DefaultMaxWords, p.maxWords)
		}
		if p.minChars != DefaultMinChars {
			t.Errorf("expected minChars %d, got %d", DefaultMinChars, p.minChars)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithMaxWords(0), WithMinChars(-1))
		if p.maxWords != DefaultMaxWords || p.minChars != DefaultMinChars {
			t.Errorf("expected defaults, got %d/%d", p.maxWords, p.minChars)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker'")
	}
}

func TestChunkPage_Empty(t *testing.T) {
	p := New()
	for _, page := range []string{"", "   \n\t  "} {
		if chunks := p.ChunkPage(page); len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %v", page, chunks)
		}
	}
}

func TestChunkPage_DropsShortChunks(t *testing.T) {
	p := New()

	if chunks := p.ChunkPage("Call me today."); len(chunks) != 0 {
		t.Errorf("expected short chunk to be dropped, got %v", chunks)
	}

	// Exactly 30 characters is still dropped; the bound is exclusive.
	exact := "Licensed plumber in Leeds, UK."
	if len(exact) != 30 {
		t.Fatalf("fixture must be 30 chars, got %d", len(exact))
	}
	if chunks := p.ChunkPage(exact); len(chunks) != 0 {
		t.Errorf("expected 30-char chunk to be dropped, got %v", chunks)
	}
}

func TestChunkPage_NormalisesWhitespace(t *testing.T) {
	p := New()

	chunks := p.ChunkPage("  Twenty years\n\nof   experience\twith boilers.  ")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Twenty years of experience with boilers." {
		t.Errorf("unexpected chunk %q", chunks[0])
	}
}

func TestChunkPage_GreedyPacking(t *testing.T) {
	p := New(WithMaxWords(25))
	page := strings.Join(sentences("S", 5), " ")

	chunks := p.ChunkPage(page)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks[:2] {
		if n := len(strings.Fields(c)); n != 20 {
			t.Errorf("chunk %d: expected 20 words, got %d", i, n)
		}
	}
	if n := len(strings.Fields(chunks[2])); n != 10 {
		t.Errorf("final chunk: expected 10 words, got %d", n)
	}
}

func TestChunkPage_LongSentenceKeptWhole(t *testing.T) {
	p := New(WithMaxWords(5))
	long := "We install and service gas boilers radiators and underfloor heating systems across the county."

	chunks := p.ChunkPage("Short intro sentence here today. " + long)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[1] != long {
		t.Errorf("expected long sentence intact, got %q", chunks[1])
	}
}

func TestChunkPages_NeverMergesPages(t *testing.T) {
	p := New()
	pages := []string{
		"Page one mentions emergency call outs.",
		"Page two mentions bathroom installations.",
	}

	chunks, err := p.ChunkPages(context.Background(), pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected one chunk per page, got %d", len(chunks))
	}
	if chunks[0] != pages[0] || chunks[1] != pages[1] {
		t.Errorf("pages were merged or altered: %v", chunks)
	}
}

func TestChunkPages_WordCapAndReconstruction(t *testing.T) {
	p := New()
	page1 := sentences("A", 25)
	page2 := sentences("B", 15)

	chunks, err := p.ChunkPages(context.Background(), []string{
		strings.Join(page1, " "),
		strings.Join(page2, " "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 250 + 150 words with a 150 word cap.
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len(strings.Fields(c)); n > DefaultMaxWords {
			t.Errorf("chunk %d exceeds cap: %d words", i, n)
		}
		if len(c) <= DefaultMinChars {
			t.Errorf("chunk %d too short: %q", i, c)
		}
	}

	got := strings.Join(chunks, " ")
	want := strings.Join(append(page1, page2...), " ")
	if got != want {
		t.Errorf("chunks do not reproduce the page sentences in order")
	}
}

func TestChunkPages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().ChunkPages(ctx, []string{"Anything at all goes on this page."}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", "Hello there.", []string{"Hello there."}},
		{"mixed terminators", "Need help? Call now! We reply fast.", []string{"Need help?", "Call now!", "We reply fast."}},
		{"no terminator", "Open weekends", []string{"Open weekends"}},
		{"decimal not split", "Rates from 4.50 per hour. Book now.", []string{"Rates from 4.50 per hour.", "Book now."}},
		{"closing quote", `He said "done." Then left.`, []string{`He said "done."`, "Then left."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("SplitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
