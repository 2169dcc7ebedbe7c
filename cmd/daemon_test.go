package cmd

import (
	"sync/atomic"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"

	"github.com/reloadpress/autopost/internal/logger"
)

// A batch that outlasts the cron interval must not run concurrently
// with the next trigger; it would double-book schedule slots.
func TestDaemonChainSkipsOverlappingTrigger(t *testing.T) {
	chain := cron.NewChain(cron.SkipIfStillRunning(cronLogger{logger.NewNop()}))

	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	job := chain.Then(cron.FuncJob(func() {
		runs.Add(1)
		started <- struct{}{}
		<-release
	}))

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// Second trigger while the first is still running: must return
	// immediately without executing.
	job.Run()

	close(release)
	<-done
	assert.Equal(t, int32(1), runs.Load())
}
