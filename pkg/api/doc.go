// Package api serves the overflow engine over HTTP.
//
// Two styles of use are supported. Stateless fitting posts a complete
// scenario to /v1/fit and gets the partition back; results are cached by
// scenario fingerprint, which doubles as the ETag. Sessions keep a live
// engine per client: items are added and removed and container sizes are
// reported one request at a time, and every response carries the current
// partition.
//
// # Routes
//
//	GET    /healthz
//	POST   /v1/fit
//	GET    /v1/scenarios
//	GET    /v1/scenarios/{name}
//	PUT    /v1/scenarios/{name}
//	DELETE /v1/scenarios/{name}
//	POST   /v1/scenarios/{name}/run
//	POST   /v1/sessions
//	GET    /v1/sessions/{id}
//	DELETE /v1/sessions/{id}
//	POST   /v1/sessions/{id}/items
//	DELETE /v1/sessions/{id}/items/{itemID}
//	POST   /v1/sessions/{id}/resize
//	GET    /metrics (when enabled)
//
// Errors are JSON objects {"code": "...", "message": "..."} whose code is a
// [errors.Code].
package api
