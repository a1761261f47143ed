// Package normalisers provides implementations of the Normaliser interface
// for supplier profile formats. Each normaliser knows how to extract page
// text from a specific MIME type.
//
// Normalisers are registered with the Registry at startup.
package normalisers
