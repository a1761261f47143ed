package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptMultiQuery asks for alternative phrasings of a request.
	// Placeholders: %d (count), %s (query).
	PromptMultiQuery = "multi_query"

	// PromptDecompose splits a compound request into sub-queries.
	// Placeholders: %s (query).
	PromptDecompose = "decompose"

	// PromptRoute classifies a request into one role.
	// Placeholders: %s (role list), %s (query).
	PromptRoute = "route"

	// PromptDetectRoles extracts supplier roles from profile text.
	// Placeholders: %d (max roles), %s (profile text).
	PromptDetectRoles = "detect_roles"

	// PromptRerank orders candidate passages by relevance.
	// Placeholders: %s (query), %s (numbered passages).
	PromptRerank = "rerank"

	// PromptSummary produces the JSON recommendation.
	// Placeholders: %s (query), %s (candidate list).
	PromptSummary = "summary"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// defaultPrompts are the built-in templates. File-backed stores seed user files from them
// and services fall back to them when no store is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	PromptMultiQuery: `Generate %d alternative phrasings of the customer request below for searching supplier profiles.
Vary vocabulary and detail but keep the meaning. Return one phrasing per line with no numbering or commentary.

Request: %s`,

	PromptDecompose: `Split the customer request below into 2 to 4 short sub-queries, each covering a distinct need.
Return one sub-query per line with no numbering or commentary.

Request: %s`,

	PromptRoute: `You route customer requests to one supplier role.
Known roles: %s

Reply with exactly one role from the list, or "all" if none fits.

Request: %s
Role:`,

	PromptDetectRoles: `Read the supplier profile below and list up to %d professions the supplier offers, most important first.
Reply with a comma-separated list of short lowercase role names and nothing else.

Profile:
%s`,

	PromptRerank: `Order the passages below by how well each supplier fits the customer request, best first.
Reply with the passage numbers only, comma-separated, for example: 3, 1, 2

Request: %s

Passages:
%s`,

	PromptSummary: `A customer asked: %s

Candidate suppliers, best first:
%s

Recommend one candidate. Reply with JSON only, in this shape:
{"candidate_name": "...", "key_strengths": ["...", "..."], "reasoning": "..."}`,
}

// DefaultPrompts returns a copy of the built-in prompt templates keyed by name.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

// DefaultPrompt returns the built-in template for name, or "" if unknown.
func DefaultPrompt(name string) string {
	return defaultPrompts[name]
}
