// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package supervisor provides process supervision for the curator daemon using
suture v4.

The tree organizes long-running services into three layers:

	RootSupervisor ("curator")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── PipelineService (scheduled ranking runs)
	├── MessagingSupervisor ("messaging-layer")
	│   └── ReloadService (run-completed subscription, artifact reload)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Services that return an error are restarted with backoff. A service that
fails FailureThreshold times within the decay window puts its supervisor
into FailureBackoff before the next restart.

# Usage

	tree := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	tree.AddPipelineService(services.NewPipelineService(engine, pcfg, logger))
	tree.AddMessagingService(services.NewReloadService(pub, apiServer, rcfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))
	err := tree.Serve(ctx)

Supervisor events are logged through sutureslog.
*/
package supervisor
