package poller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whiskeyjimbo/DNSWatch/internal/notifications"
	"github.com/whiskeyjimbo/DNSWatch/internal/rules"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type lookupResult struct {
	addrs []string
	err   error
}

// scriptedResolver returns its results in order, repeating the last one
// once the script runs out.
type scriptedResolver struct {
	mu      sync.Mutex
	results []lookupResult
	calls   int
}

func (r *scriptedResolver) LookupHost(_ context.Context, _ string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.calls
	r.calls++
	if i >= len(r.results) {
		i = len(r.results) - 1
	}
	return r.results[i].addrs, r.results[i].err
}

type capturingNotifier struct {
	mu   sync.Mutex
	sent []notifications.Notification
}

func (n *capturingNotifier) SendNotification(_ context.Context, notification notifications.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *capturingNotifier) Type() notifications.NotificationType {
	return notifications.LogNotification
}

func newTestContext(res *scriptedResolver, workers int) (PollContext, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return PollContext{
		Ctx:        context.Background(),
		Logger:     zap.New(core).Sugar(),
		Domain:     "db.example.test",
		Workers:    workers,
		Resolver:   res,
		State:      NewState(),
		ruleErrors: &ruleErrorTracker{},
	}, logs
}

func TestResolveOnceReportsInitialAndSubsequentChanges(t *testing.T) {
	res := &scriptedResolver{results: []lookupResult{
		{addrs: []string{"10.0.0.1"}},
		{addrs: []string{"10.0.0.1", "10.0.0.2"}},
	}}
	pc, logs := newTestContext(res, 1)

	resolveOnce(pc, 0)
	resolveOnce(pc, 0)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "address changed: N/A (Initial) -> 10.0.0.1", entries[0].Message)

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "address changed: 10.0.0.1 -> 10.0.0.1,10.0.0.2", entries[1].Message)

	assert.Equal(t, "10.0.0.1,10.0.0.2", pc.State.LastAddress())
}

func TestResolveOnceRoutineCadence(t *testing.T) {
	res := &scriptedResolver{results: []lookupResult{
		{addrs: []string{"10.0.0.1"}},
	}}
	pc, logs := newTestContext(res, 4)
	pc.State.RecordResult("10.0.0.1")

	// counts 1-3 are stable and off-cadence: silent
	resolveOnce(pc, 0)
	resolveOnce(pc, 1)
	resolveOnce(pc, 2)
	assert.Empty(t, logs.All())

	// count 4 is a multiple of the worker count: one routine line
	resolveOnce(pc, 3)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "resolved", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "10.0.0.1", fields["addresses"])
	assert.Equal(t, int64(4), fields["count"])
}

func TestResolveOnceFailureLeavesStateUntouched(t *testing.T) {
	res := &scriptedResolver{results: []lookupResult{
		{addrs: []string{"10.0.0.1"}},
		{err: errors.New("lookup db.example.test: no such host")},
		{addrs: []string{"10.0.0.2"}},
	}}
	pc, logs := newTestContext(res, 1)

	resolveOnce(pc, 0)
	require.Equal(t, "10.0.0.1", pc.State.LastAddress())

	resolveOnce(pc, 0)
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "resolution failed", entries[1].Message)

	fields := entries[1].ContextMap()
	assert.Equal(t, int64(0), fields["worker"])
	assert.Equal(t, int64(2), fields["count"])
	assert.Contains(t, fields, "rtt_ms")
	assert.Contains(t, fields["error"], "no such host")

	// failure must not update the cell: the next success is compared
	// against the pre-failure value
	assert.Equal(t, "10.0.0.1", pc.State.LastAddress())

	resolveOnce(pc, 0)
	entries = logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "address changed: 10.0.0.1 -> 10.0.0.2", entries[2].Message)
}

func TestResolveOnceEmptyAddressListIsNA(t *testing.T) {
	res := &scriptedResolver{results: []lookupResult{
		{addrs: []string{}},
	}}
	pc, logs := newTestContext(res, 1)

	resolveOnce(pc, 0)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "address changed: N/A (Initial) -> N/A", entries[0].Message)
	assert.Equal(t, "N/A", pc.State.LastAddress())
}

func TestResolveOnceFailureCountsConsecutiveFailures(t *testing.T) {
	res := &scriptedResolver{results: []lookupResult{
		{err: errors.New("no such host")},
		{err: errors.New("no such host")},
		{addrs: []string{"10.0.0.1"}},
	}}
	pc, _ := newTestContext(res, 1)

	resolveOnce(pc, 0)
	resolveOnce(pc, 0)
	assert.Equal(t, int64(2), pc.State.Failures())

	resolveOnce(pc, 0)
	assert.Equal(t, int64(0), pc.State.Failures())
}

func TestEvaluateRulesNotifiesOnSatisfiedCondition(t *testing.T) {
	res := &scriptedResolver{results: []lookupResult{
		{addrs: []string{"10.0.0.1"}},
	}}
	pc, _ := newTestContext(res, 1)

	notifier := &capturingNotifier{}
	pc.Notifier = notifier
	pc.Rules = []rules.Rule{
		{Name: "any-change", Condition: "changed"},
		{Name: "never", Condition: "failures >= 100"},
	}

	resolveOnce(pc, 0)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "any-change", notifier.sent[0].Rule)
	assert.Equal(t, notifications.WarningLevel, notifier.sent[0].Level)
	assert.Equal(t, "db.example.test", notifier.sent[0].Domain)
	assert.Equal(t, int64(1), notifier.sent[0].Count)
}

func TestEvaluateRulesReportsBrokenRuleOnce(t *testing.T) {
	res := &scriptedResolver{results: []lookupResult{
		{addrs: []string{"10.0.0.1"}},
	}}
	pc, logs := newTestContext(res, 1)
	pc.State.RecordResult("10.0.0.1")

	pc.Notifier = &capturingNotifier{}
	pc.Rules = []rules.Rule{{Name: "broken", Condition: "rtt >"}}

	resolveOnce(pc, 0)
	resolveOnce(pc, 0)
	resolveOnce(pc, 0)

	errorEntries := logs.FilterMessage("rule evaluation failed").All()
	require.Len(t, errorEntries, 1)
	assert.Equal(t, "broken", errorEntries[0].ContextMap()["rule"])
}

func TestJoinAddresses(t *testing.T) {
	tests := []struct {
		name  string
		addrs []string
		want  string
	}{
		{name: "empty list", addrs: nil, want: "N/A"},
		{name: "single address", addrs: []string{"10.0.0.1"}, want: "10.0.0.1"},
		{name: "resolver order preserved", addrs: []string{"10.0.0.2", "10.0.0.1"}, want: "10.0.0.2,10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinAddresses(tt.addrs))
		})
	}
}
