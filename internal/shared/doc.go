// Package shared groups helpers used by more than one layer of the service.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and small news fixtures for handler and service tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewLeadService(engine, store, services.WithServiceLogger(logger))
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dataset published")
//
// Nothing here may import business packages other than pkg/contracts.
package shared
