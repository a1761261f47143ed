// Package services implements the driving port interfaces.
// Services contain the matching pipeline: query transformation, routing,
// fusion, candidate scoring and summaries, plus profile ingestion.
//
// Oracle-backed stages accept a nil LLMService and fall back to their
// documented defaults instead of failing.
package services
