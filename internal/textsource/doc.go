// Package textsource extracts the plain text that seeds a pipeline run.
//
// Plain-text inputs are read whole; PDF inputs are extracted page by page
// and concatenated in order with a newline between pages.
package textsource
