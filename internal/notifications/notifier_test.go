package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whiskeyjimbo/DNSWatch/internal/rules"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewNotifier(t *testing.T) {
	logger := zap.NewNop().Sugar()

	notifier, err := NewNotifier("log", logger)
	require.NoError(t, err)
	assert.Equal(t, LogNotification, notifier.Type())

	_, err = NewNotifier("log", nil)
	assert.Error(t, err)

	_, err = NewNotifier("carrier-pigeon", logger)
	assert.Error(t, err)
}

func TestLogNotifierLevels(t *testing.T) {
	tests := []struct {
		name  string
		level NotificationLevel
		want  zapcore.Level
	}{
		{name: "info", level: InfoLevel, want: zapcore.InfoLevel},
		{name: "warning", level: WarningLevel, want: zapcore.WarnLevel},
		{name: "error", level: ErrorLevel, want: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			notifier := NewLogNotifier(zap.New(core).Sugar())

			err := notifier.SendNotification(context.Background(), Notification{
				Message: "address changed: 10.0.0.1 -> 10.0.0.2",
				Level:   tt.level,
				Domain:  "db.example.test",
				Worker:  1,
				Count:   42,
				RTT:     12 * time.Millisecond,
				Rule:    "drift",
			})
			require.NoError(t, err)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Level)
			assert.Equal(t, "address changed: 10.0.0.1 -> 10.0.0.2", entries[0].Message)

			fields := entries[0].ContextMap()
			assert.Equal(t, "db.example.test", fields["domain"])
			assert.Equal(t, int64(1), fields["worker"])
			assert.Equal(t, int64(42), fields["count"])
			assert.Equal(t, int64(12), fields["rtt_ms"])
			assert.Equal(t, "drift", fields["rule"])
		})
	}
}

func TestBuildMessages(t *testing.T) {
	assert.Equal(t,
		"address changed: N/A (Initial) -> 10.0.0.1",
		BuildChangeMessage("N/A (Initial)", "10.0.0.1"),
	)

	rule := rules.Rule{Name: "slow-resolution", Condition: "rtt > 200"}
	assert.Equal(t,
		"rule condition met: slow-resolution",
		BuildRuleMessage(rule, rules.Result{Satisfied: true}),
	)
	assert.Contains(t,
		BuildRuleMessage(rule, rules.Result{Error: errors.New("bad syntax")}),
		"rule evaluation failed",
	)
}

func TestGetRuleLevel(t *testing.T) {
	assert.Equal(t, WarningLevel, GetRuleLevel(rules.Result{Satisfied: true}))
	assert.Equal(t, ErrorLevel, GetRuleLevel(rules.Result{Error: errors.New("boom")}))
}
