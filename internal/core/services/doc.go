// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The SyncEngine holds the index update rules, the ChangeDispatcher
// serialises every call into it, and the NotificationQueue feeds the
// dispatcher from a single worker goroutine.
package services
