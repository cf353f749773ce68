// Package services implements the business logic layer of leadscout. It sits
// between HTTP handlers and the scoring engine, owns the served dataset and
// turns engine results into API views.
//
// # Services
//
//   - LeadService: loads, regenerates and scores news datasets, answers lead
//     queries and exports results
//   - DirectoryService: company directory dashboard, search, lead filter
//     and export
//   - HealthService: health, readiness, liveness and version reporting
//
// # Dataset lifecycle
//
// A dataset is scored completely before it is published. DatasetStore swaps
// the published snapshot atomically, so readers always see one consistent
// version and a failed refresh leaves the previous dataset in place. Every
// successful replacement is broadcast to websocket clients as a
// "leads:refresh" message.
//
// # Errors
//
// Services return the sentinel errors of this package or of package leads,
// wrapped with context. Handlers map them to problem responses.
package services
