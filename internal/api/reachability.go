package api

import (
	"context"
	"time"
)

// ReachabilityProbeOutcome is either reached, with the authenticated user,
// or unreachable, with the error.
type ReachabilityProbeOutcome struct {
	CurrentUser CurrentUser
	Duration    time.Duration
	Err         error
}

func (o ReachabilityProbeOutcome) Reached() bool {
	return o.Err == nil
}

// ProbeReachability checks that the node responds and accepts the
// credentials by calling GET /api/whoami. It does not check node health.
func (c *Client) ProbeReachability(ctx context.Context) ReachabilityProbeOutcome {
	start := time.Now()
	u, err := c.CurrentUser(ctx)
	if err != nil {
		return ReachabilityProbeOutcome{Duration: time.Since(start), Err: err}
	}
	return ReachabilityProbeOutcome{CurrentUser: u, Duration: time.Since(start)}
}
