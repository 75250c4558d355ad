package domain

import "time"

// JobKind identifies the work a queued job asks for.
type JobKind string

// Job kinds accepted by the notification queue.
const (
	JobEvent        JobKind = "event"
	JobFullReindex  JobKind = "full_reindex"
	JobReindexGraph JobKind = "reindex_graph"
)

// Job is one unit of work for the single sync worker.
type Job struct {
	Kind        JobKind
	Event       ChangeEvent
	GraphID     GraphID
	Origin      string
	SubmittedAt time.Time
}

// EventJob wraps a change event.
func EventJob(event ChangeEvent, origin string) Job {
	return Job{Kind: JobEvent, Event: event, Origin: origin, SubmittedAt: time.Now()}
}

// FullReindexJob asks for every graph to be rebuilt.
func FullReindexJob(origin string) Job {
	return Job{Kind: JobFullReindex, Origin: origin, SubmittedAt: time.Now()}
}

// ReindexGraphJob asks for a single graph to be rebuilt.
func ReindexGraphJob(graphID GraphID, origin string) Job {
	return Job{Kind: JobReindexGraph, GraphID: graphID, Origin: origin, SubmittedAt: time.Now()}
}
