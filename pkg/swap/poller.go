package swap

import (
	"context"
	"time"

	"intents-swap/pkg/oneclick"
)

// poll is one status-polling run. Closing stop ends it; done closes when the
// run has fully wound down.
type poll struct {
	stop chan struct{}
	done chan struct{}
}

func defaultTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// StartPolling begins checking the deposit status at the configured
// interval. At most one poll is active: any previous run is cancelled first.
func (c *Controller) StartPolling(depositAddress, memo string) {
	c.mu.Lock()
	c.stopPollLocked()

	p := &poll{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.poll = p
	c.state = StatePolling
	c.mu.Unlock()

	go c.runPoll(p, depositAddress, memo)
}

// StopPolling cancels the active poll, if any
func (c *Controller) StopPolling() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopPollLocked()
}

func (c *Controller) stopPollLocked() {
	if c.poll != nil {
		close(c.poll.stop)
		c.poll = nil
	}
}

func (c *Controller) runPoll(p *poll, depositAddress, memo string) {
	ticks, stop := c.newTicker(c.opts.PollInterval)
	defer stop()
	defer close(p.done)

	for {
		select {
		case <-p.stop:
			return
		case <-ticks:
			status, err := c.client.Status(context.Background(), depositAddress, memo)
			if err != nil {
				// Transient failures must not stop the poll
				c.log.Warnw("status poll failed", "depositAddress", depositAddress, "error", err)
				continue
			}
			if c.applyPollStatus(p, status.Status) {
				return
			}
		}
	}
}

// applyPollStatus records a fetched status and reports whether the run
// should end, either because the status is terminal or because a newer poll
// has replaced this one.
func (c *Controller) applyPollStatus(p *poll, code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poll != p {
		return true
	}

	st := statusLine(code)
	c.setStatusLocked(st.Message, st.Class)

	if oneclick.IsTerminalStatus(code) {
		c.poll = nil
		c.state = terminalState(code)
		return true
	}

	return false
}
