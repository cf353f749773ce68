// Package http implements the HTTP handlers of the lead scoring API.
// Handlers stay thin: they decode and validate requests, call a service
// interface and hand every error to the shared problem-details ErrorHandler.
//
// # Routes
//
//	/api/health                          HealthHandler (also /ready, /live)
//	/api/version                         HealthHandler.Version
//	/api/leads/dataset/generate          POST synthetic refresh
//	/api/leads/dataset/upload            POST multipart CSV or Excel file
//	/api/leads/dataset                   served dataset metadata
//	/api/leads/records                   scored headlines
//	/api/leads/companies                 company aggregates
//	/api/leads/companies/{company}/news  one company's headlines
//	/api/leads/top?n=5                   best headlines
//	/api/leads/summary                   dashboard counters
//	/api/leads/score                     POST stateless scoring
//	/api/leads/export                    CSV or Excel download
//	/api/companies/...                   DirectoryHandler
//
// Handlers depend on the LeadService, DirectoryService and HealthService
// interfaces so tests can substitute testify mocks.
package http
