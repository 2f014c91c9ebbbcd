// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package services provides suture.Service wrappers for the serve mode of
Curator.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

Pipeline Scheduler (PipelineService):
  - Runs the ranking pipeline on startup and on a fixed interval
  - Skips a tick when the previous run is still in progress
  - Calls OnSuccess after every successful run

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Listens before serving so that Addr reports the bound port

Artifact Reloader (ReloadService):
  - Subscribes to run-completed notifications and reloads the API snapshot
  - Optionally polls the artifact directory when artifacts are written by
    another process without notifications

# Usage Example

	tree.AddPipelineService(services.NewPipelineService(engine, services.PipelineServiceConfig{
	    RunOnStartup: true,
	    Interval:     6 * time.Hour,
	}, logger))
	tree.AddMessagingService(services.NewReloadService(publisher, server, services.ReloadServiceConfig{}, logger))
	tree.AddAPIService(services.NewHTTPServerService(&http.Server{Addr: ":8086", Handler: server.Handler()}, 10*time.Second))

Returning an error from Serve makes suture restart the service with backoff;
returning ctx.Err() after cancellation is a clean stop.
*/
package services
