package sim

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/BlockSavvy/jetstream-sub001/pkg/natsutil"
)

// SubjectIndexJobs is the NATS subject simulation index jobs travel on.
const SubjectIndexJobs = "jetstream.index.simulations"

// IndexQueueGroup is the worker queue group consuming index jobs.
const IndexQueueGroup = "index-workers"

// NATSDispatcher publishes index jobs for out-of-process workers.
type NATSDispatcher struct {
	nc *nats.Conn
}

// NewNATSDispatcher creates a dispatcher over an existing connection.
func NewNATSDispatcher(nc *nats.Conn) *NATSDispatcher {
	return &NATSDispatcher{nc: nc}
}

// Dispatch publishes the job. Delivery is at-most-once; a worker failure
// after receipt loses the job, which is acceptable for best-effort indexing.
func (d *NATSDispatcher) Dispatch(ctx context.Context, job IndexJob) error {
	if err := natsutil.Publish(ctx, d.nc, SubjectIndexJobs, job); err != nil {
		return fmt.Errorf("sim: publish index job %s: %w", job.ID, err)
	}
	return nil
}
