// Package app wires the lead scoring server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, LEADSCOUT_* environment)
//  2. Initialize logging and OpenTelemetry
//  3. Build the sentiment scorer, scoring engine and dataset store
//  4. Create the lead, directory and health services
//  5. Set up middleware, handlers, the websocket feed and /metrics
//  6. Publish the initial dataset, start the scheduler and serve
//
// # Usage
//
//	application, err := app.NewApplication(services.BuildInfo{Version: version})
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run returns after ctx is cancelled and the server, scheduler, websocket
// hub and telemetry providers have shut down.
package app
