// Package httpapi exposes the sequencer and the record services over HTTP
// with JSON bodies.
//
// # Routes
//
//	GET    /health
//	GET    /api/snapshot                current sequencer.View
//	GET    /api/grid                    text rendering with legend
//	POST   /api/sequence/restart
//	POST   /api/sequence/aggregation    {"level": "cluster"}
//	GET    /api/projects
//	POST   /api/projects
//	GET    /api/projects/{id}
//	PATCH  /api/projects/{id}
//	DELETE /api/projects/{id}
//	GET    /api/files
//	DELETE /api/files/{id}              also drops the derived result
//	GET    /api/results
//	POST   /api/signup
//	POST   /api/session                 {"email": "..."}
//	GET    /api/session
//	DELETE /api/session
//	PATCH  /api/profile
//
// Errors are returned as {"error": "..."} with a status derived from the
// sentinel error behind them.
package httpapi
