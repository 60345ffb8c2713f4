package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"marketsync/contract"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestBackendMonitor_Sample(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a change feed three quarters full and two live subscriptions
	changes := make(chan contract.ChangeEvent, 4)
	for range 3 {
		changes <- contract.ChangeEvent{Table: "messages"}
	}
	monitor := NewBackendMonitor(log, []NamedChannel{
		{Name: "changes", Channel: changes},
		{Name: "not a channel", Channel: 42},
	}, func() int { return 2 }, time.Minute, 0.75)

	// When sampling
	sample := monitor.Sample()

	// Then only real channels are measured
	req.Equal([]FeedLoad{{Name: "changes", Length: 3, Capacity: 4}}, sample.Feeds)
	req.True(sample.Feeds[0].Saturated(0.75))
	req.False(sample.Feeds[0].Saturated(0.9))
	req.Equal(2, sample.Subscriptions)
	req.Len(changes, 3)
}

func TestBackendMonitor_StopsWithContext(t *testing.T) {
	req := require.New(t)
	monitor := NewBackendMonitor(logs.GetLoggerFromLevel(slog.LevelDebug), nil, nil, time.Millisecond, 0.8)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req.NoError(monitor.Run(ctx))
}
