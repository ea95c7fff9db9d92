package poller

import (
	"strings"
	"sync"
	"time"

	"github.com/whiskeyjimbo/DNSWatch/internal/notifications"
	"github.com/whiskeyjimbo/DNSWatch/internal/rules"
)

// resolveOnce is one worker invocation: count the call, resolve with
// timing, then report. Errors are converted to log lines here and never
// escape, so the ticker keeps firing.
func resolveOnce(pc PollContext, id int) {
	count := pc.State.NextCall()

	start := time.Now()
	addrs, err := pc.Resolver.LookupHost(pc.Ctx, pc.Domain)
	elapsed := time.Since(start)

	result := Result{
		Worker:  id,
		Count:   count,
		Elapsed: elapsed,
		Err:     err,
	}

	if err != nil {
		pc.State.RecordFailure()
	} else {
		pc.State.ResetFailures()
		result.Addresses = joinAddresses(addrs)
		result.Previous, result.Changed = pc.State.RecordResult(result.Addresses)
	}

	reportResult(pc, result)

	if pc.Metrics != nil {
		pc.Metrics.ObserveResolution(result.Worker, err == nil, elapsed)
		if result.Changed {
			pc.Metrics.ObserveChange()
		}
	}

	evaluateRules(pc, result)
}

// joinAddresses flattens the resolver output into the comparable form,
// preserving resolver order. An empty list on success is the literal
// "N/A", distinct from the failure path.
func joinAddresses(addrs []string) string {
	if len(addrs) == 0 {
		return "N/A"
	}
	return strings.Join(addrs, ",")
}

func reportResult(pc PollContext, r Result) {
	l := pc.Logger.With(
		"domain", pc.Domain,
		"worker", r.Worker,
		"count", r.Count,
		"rtt_ms", r.Elapsed.Milliseconds(),
	)

	switch {
	case r.Err != nil:
		l.Errorw("resolution failed", "error", r.Err.Error())
	case r.Changed:
		l.Warn(notifications.BuildChangeMessage(r.Previous, r.Addresses))
	case r.Count%int64(pc.Workers) == 0:
		// one routine line per full interval once W calls have landed
		l.Infow("resolved", "addresses", r.Addresses)
	}
}

func evaluateRules(pc PollContext, r Result) {
	if len(pc.Rules) == 0 || pc.Notifier == nil {
		return
	}

	params := rules.Params{
		RTT:      r.Elapsed,
		Count:    r.Count,
		Changed:  r.Changed,
		Failed:   r.Err != nil,
		Failures: pc.State.Failures(),
	}

	for _, rule := range pc.Rules {
		ruleResult := rules.Evaluate(rule, params)

		if ruleResult.Error != nil {
			if pc.ruleErrors.firstError(rule.Name) {
				pc.Logger.Errorw("rule evaluation failed",
					"rule", rule.Name,
					"error", ruleResult.Error.Error(),
				)
			}
			continue
		}

		if !ruleResult.Satisfied {
			continue
		}

		notification := notifications.Notification{
			Message: notifications.BuildRuleMessage(rule, ruleResult),
			Level:   notifications.GetRuleLevel(ruleResult),
			Domain:  pc.Domain,
			Worker:  r.Worker,
			Count:   r.Count,
			RTT:     r.Elapsed,
			Rule:    rule.Name,
		}
		if err := pc.Notifier.SendNotification(pc.Ctx, notification); err != nil {
			pc.Logger.Warnw("failed to send notification", "rule", rule.Name, "error", err.Error())
		}
	}
}

type ruleErrorTracker struct {
	seen sync.Map
}

func (t *ruleErrorTracker) firstError(name string) bool {
	_, loaded := t.seen.LoadOrStore(name, true)
	return !loaded
}
