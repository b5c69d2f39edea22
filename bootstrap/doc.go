// Package bootstrap wires configuration, logging, Elasticsearch, the optional
// Redis field cache and the API server into a running lookout service.
//
// Startup order is config, logger, Elasticsearch (retried with backoff),
// Redis (best effort), storage clients, then the HTTP server. Shutdown runs
// in reverse: the server drains first, then Redis is closed and the logger
// is flushed.
//
// The serve command drives it as:
//
//	app, err := bootstrap.NewApp(ctx)
//	...
//	app.Start(ctx)
//	app.WaitForShutdown()
//	app.Shutdown()
package bootstrap
