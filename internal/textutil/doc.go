// Package textutil provides the text primitives the reconciliation engine is
// built on: comparison keys, similarity scoring, and storage-key sanitizing.
//
// The primary use cases are:
//   - Normalize converts display text into a comparison key (casefolded,
//     diacritics and punctuation stripped, whitespace collapsed)
//   - Ratio and BestMatch score normalized strings with a Levenshtein ratio
//     and pick the best candidate above a threshold
//   - SanitizeSegment turns a display name into a title-cased alphanumeric
//     identifier segment
//
// Normalized keys are never displayed; they only decide whether two names
// denote the same concept. All functions are pure and safe for concurrent use.
package textutil
