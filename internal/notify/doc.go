// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package notify announces completed ranking runs on a watermill topic.
//
// The default gochannel backend connects the pipeline scheduler and the HTTP
// API inside one serve process. The nats backend publishes on a core NATS
// subject so that other processes, such as a static site builder or a second
// API replica, can reload the artifacts:
//
//	pub, err := notify.New(notify.Config{Backend: notify.BackendNATS, URL: "nats://127.0.0.1:4222"}, logger)
//	if err != nil {
//	    return err
//	}
//	defer pub.Close()
//
//	events, _ := pub.Subscribe(ctx)
//	for ev := range events {
//	    reload(ev.ArtifactDir)
//	}
//
// Publishing goes through a circuit breaker so an unreachable broker does
// not slow down every run.
package notify
