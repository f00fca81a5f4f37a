package obd

import (
	"context"
	"sync"
	"time"

	"obdpoll/pkg/log"

	"go.uber.org/zap"
)

// Poller periodically queries the standard PID set through a Commander and
// keeps the latest readings for the display layer.
type Poller struct {
	cmd      Commander
	interval time.Duration

	mu       sync.RWMutex
	running  bool
	readings map[string]Reading
	dtcs     []DTCEntry

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(cmd Commander) *Poller {
	return &Poller{
		cmd:      cmd,
		interval: pollInterval,
		readings: make(map[string]Reading),
	}
}

func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.loop(ctx)
	return nil
}

// Stop halts the polling loop and waits for it. Safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.refresh()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) refresh() {
	for _, pid := range polledPIDs {
		raw := p.cmd.SendCommand(pid.String())
		r := Parse(pid, raw)
		if r.Err != nil {
			log.Debug("PID query failed", zap.String("pid", pid.String()), zap.Error(r.Err))
		}
		p.mu.Lock()
		p.readings[pid.String()] = r
		p.mu.Unlock()
	}

	if codes, ok := QueryDTCs(p.cmd); ok {
		p.mu.Lock()
		p.dtcs = codes
		p.mu.Unlock()
	}
}

// Reading returns the latest reading for a PID, if one has been taken.
func (p *Poller) Reading(pid PID) (Reading, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.readings[pid.String()]
	return r, ok
}

// Readings returns the latest readings in display order.
func (p *Poller) Readings() []Reading {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Reading, 0, len(polledPIDs))
	for _, pid := range polledPIDs {
		if r, ok := p.readings[pid.String()]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (p *Poller) DTCs() []DTCEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]DTCEntry, len(p.dtcs))
	copy(out, p.dtcs)
	return out
}

func (p *Poller) Connected() bool {
	return p.cmd.Connected()
}
