package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("openai", "gpt-4o-mini", "", "sk-one")

	assert.Equal(t, a, Fingerprint("openai", "gpt-4o-mini", "", "sk-one"))
	assert.NotEqual(t, a, Fingerprint("openai", "gpt-4o-mini", "", "sk-two"))
	assert.NotEqual(t, a, Fingerprint("openai", "gpt-4o", "", "sk-one"))
	assert.NotEqual(t, a, Fingerprint("openai", "gpt-4o-mini", "http://proxy", "sk-one"))
	assert.NotContains(t, a, "sk-one")
	assert.Contains(t, a, "openai/gpt-4o-mini/")
}
