package neurodb

import "strings"

// termNamespace is the annotation namespace study terms are stored
// under in ns.annotations_terms (TF-IDF weights over abstracts).
const termNamespace = "terms_abstract_tfidf"

// normalizeTerm lowercases, trims, and replaces internal spaces with
// underscores. It is a projection: applying it twice yields the same
// string as applying it once.
func normalizeTerm(term string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(term)), " ", "_")
}

// CanonicalTermKey builds the exact-match database key for a raw term,
// e.g. "Social Pain" -> "terms_abstract_tfidf__social_pain".
//
// Empty or whitespace-only input is accepted as-is and produces a
// syntactically valid key that simply matches nothing; unknown terms are
// not validated against a vocabulary.
func CanonicalTermKey(term string) string {
	return termNamespace + "__" + normalizeTerm(term)
}
