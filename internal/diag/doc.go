// Package diag defines the diagnostic model shared by every tern phase:
// severities, stable numeric codes, and a bounded Bag collecting diagnostics
// per compilation.
package diag
