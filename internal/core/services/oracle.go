package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

// DefaultOracleTimeout bounds a single text-completion call.
const DefaultOracleTimeout = 20 * time.Second

// listMarker matches leading numbering or bullets such as "1.", "2)", "-", "*".
var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)

// oracle wraps the optional LLM with prompt loading and a per-call timeout.
// Services embed it so SetPromptStore and SetOracleTimeout are promoted.
type oracle struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	timeout time.Duration
}

func newOracle(llm driven.LLMService) oracle {
	return oracle{llm: llm, timeout: DefaultOracleTimeout}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the built-in templates are used.
func (o *oracle) SetPromptStore(store driven.PromptStore) {
	o.prompts = store
}

// SetOracleTimeout overrides the per-call timeout. Non-positive values are ignored.
func (o *oracle) SetOracleTimeout(d time.Duration) {
	if d > 0 {
		o.timeout = d
	}
}

func (o *oracle) available() bool {
	return o.llm != nil
}

// template loads a prompt, falling back to the built-in one.
func (o *oracle) template(name string) string {
	if o.prompts != nil {
		if prompt, err := o.prompts.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return driven.DefaultPrompt(name)
}

// complete runs one oracle call. Every failure wraps domain.ErrOracleUnavailable
// so callers can fall back uniformly.
func (o *oracle) complete(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if o.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, domain.ErrLLMUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out, err := o.llm.Generate(callCtx, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, err)
	}
	return strings.TrimSpace(out), nil
}

// fingerprint identifies the oracle for cache keys.
func (o *oracle) fingerprint() string {
	if o.llm == nil {
		return ""
	}
	return o.llm.Fingerprint()
}

// parseLines splits oracle output into one trimmed item per line,
// dropping blank lines, list markers and surrounding quotes.
func parseLines(output string) []string {
	var items []string
	for _, line := range strings.Split(output, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// stripCodeFence removes a surrounding Markdown code fence such as ```json ... ```.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
