package metric

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job name used when none is configured.
const DefaultJob = "curvectl"

// Push sends every metric in r to the Pushgateway at url under job,
// replacing the previous group of the same job.
func (r *Registry) Push(ctx context.Context, url, job string) error {
	if job == "" {
		job = DefaultJob
	}
	return push.New(url, job).Gatherer(r.reg).PushContext(ctx)
}
