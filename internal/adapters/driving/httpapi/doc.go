// Package httpapi is the HTTP intake of the sync service.
//
// Change notifications and reindex requests are accepted with 202 and
// handed to the notification queue; the single sync worker applies them
// in arrival order. Status, health and Prometheus metrics are served from
// the same mux.
package httpapi
