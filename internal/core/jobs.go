// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
)

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// webhook handler from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a GitHubEvent and queues it for processing.
	// It returns an error if the job cannot be queued, for example, if the
	// queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, event *GitHubEvent) error
}

// Job represents a single, executable unit of work triggered by a GitHubEvent,
// such as reconciling lint comments on a pull request.
type Job interface {
	// Run executes the job's logic. It returns an error if the job fails to
	// complete successfully.
	Run(ctx context.Context, event *GitHubEvent) error
}
