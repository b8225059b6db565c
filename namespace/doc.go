// Package namespace lists the namespaces of a cluster through the dashboard
// API proxy (GET /api/clusters/<cluster>/api/v1/namespaces).
//
// Concurrent calls for the same cluster share one request.
package namespace
