package poller

import (
	"context"
	"time"

	"github.com/whiskeyjimbo/DNSWatch/internal/metrics"
	"github.com/whiskeyjimbo/DNSWatch/internal/notifications"
	"github.com/whiskeyjimbo/DNSWatch/internal/resolver"
	"github.com/whiskeyjimbo/DNSWatch/internal/rules"
	"go.uber.org/zap"
)

type PollContext struct {
	Ctx      context.Context
	Logger   *zap.SugaredLogger
	Domain   string
	Workers  int
	Interval time.Duration
	Resolver resolver.Resolver
	State    *State
	Metrics  *metrics.ResolutionMetrics
	Rules    []rules.Rule
	Notifier notifications.Notifier

	// set by Start; broken rules are reported once, not per call
	ruleErrors *ruleErrorTracker
}

// Result carries the outcome of one worker invocation.
type Result struct {
	Worker    int
	Count     int64
	Elapsed   time.Duration
	Addresses string
	Previous  string
	Changed   bool
	Err       error
}
