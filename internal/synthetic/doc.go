// Package synthetic generates demo company news.
//
// Headlines follow the pattern "<company> <phrase> in <industry> sector" and are
// dated up to LookbackDays before the generator's clock. A fixed seed makes the
// output reproducible for a given day, which is what the tests and the CLI rely on.
package synthetic
