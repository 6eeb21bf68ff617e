// Package api serves the dashboard over a JSON REST interface built on chi.
//
// Routes:
//
//	GET    /health/live
//	GET    /health/ready             readiness checks, cache stats under "info"
//	GET    /api/dashboard/stats      per-collection counts
//	GET    /api/cache                cache counters
//	DELETE /api/cache                drop every cached entry
//	POST   /api/cache/reset-stats    zero the counters
//	GET    /api/{resource}           list; ?school=<id> lists one parent's documents
//	POST   /api/{resource}
//	GET    /api/{resource}/{id}
//	PUT    /api/{resource}/{id}      shallow merge
//	DELETE /api/{resource}/{id}
//
// Errors are rendered as {"error": ..., "code": ..., "requestId": ...}.
// Missing documents and unknown resources map to 404, validation failures to
// 400 and an unreachable store to 503.
package api
