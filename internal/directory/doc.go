// Package directory answers questions about a company directory: dashboard
// statistics, name or sphere search, lead filtering and detail lookup.
package directory
