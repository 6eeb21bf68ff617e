// Package sanitizer cleans user-supplied text before it reaches the document store.
//
// [StripHTML] removes all markup using bluemonday's strict policy.
// [SanitizeHTML] keeps basic formatting for free-text fields.
// [Document] applies both to every string in a document, recursively.
package sanitizer
