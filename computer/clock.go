package computer

import (
	"time"

	"nic/cpu"
)

// The clocked driver is a goroutine that single-steps the processor and
// sleeps one clock tick after every completed execute half-step, so an
// onlooker sees one instruction per tick. It stops by itself when the
// status leaves Success, or cooperatively when the running flag is
// cleared; Stop additionally wakes it if it is mid-sleep.
type driver struct {
	stop chan struct{} // closed by Stop to cut a sleep short
	done chan struct{} // closed by the driver when its loop exits
}

// Start spawns the clocked driver. A no-op if one is already running.
func (c *Computer) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
}

// Stop clears the running flag, wakes the driver if it is asleep, and
// waits for its loop to exit. A no-op if nothing is running.
func (c *Computer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// StartStop toggles the driver, for a front-panel run/stop switch.
func (c *Computer) StartStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running.Load() {
		c.stopLocked()
	} else {
		c.startLocked()
	}
}

func (c *Computer) startLocked() {
	if c.running.Load() {
		return
	}
	d := &driver{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.driver = d
	c.running.Store(true)
	go c.run(d)
}

func (c *Computer) stopLocked() {
	d := c.driver
	if d == nil {
		return
	}
	c.running.Store(false)
	close(d.stop)
	<-d.done
	c.driver = nil
}

func (c *Computer) run(d *driver) {
	defer close(d.done)
	defer c.running.Store(false)

	for c.running.Load() && c.Proc.Status() == cpu.Success {
		c.Proc.Step()
		if c.Proc.NextMove() != cpu.Fetch {
			continue
		}
		// an execute half-step just completed; sleep one tick,
		// re-reading the tick so pace changes apply promptly
		select {
		case <-time.After(c.ClockTick()):
		case <-d.stop:
			return
		}
	}
}
