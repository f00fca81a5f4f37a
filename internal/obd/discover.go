package obd

import (
	"context"
	"sync"
	"time"

	"obdpoll/internal/transport"
	"obdpoll/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// probe opens one candidate endpoint, pokes it with a reset command and
// reports whether anything answered. The shared context doubles as the stop
// signal: a probe that finishes after a sibling has won discards its result.
func probe(ctx context.Context, tr transport.Transport, endpoint string, baud int, timeout time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}

	h, err := tr.Open(endpoint, baud, timeout)
	if err != nil {
		log.Debug("probe open failed", zap.String("port", endpoint), zap.Error(err))
		return false
	}
	defer h.Close()

	if _, err := h.Write([]byte(CommandReset + CR)); err != nil {
		return false
	}
	time.Sleep(settleInterval)

	resp, err := h.ReadAvailable()
	if err != nil || len(resp) == 0 {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

// Discover probes every candidate endpoint concurrently and returns the one
// hosting a responsive adapter. It waits for all probers, winners and
// losers alike, before returning. When two adapters answer within the same
// window the first to record its result wins; the tie is racy on purpose.
func Discover(ctx context.Context, tr transport.Transport, ports transport.Ports, baud int, timeout time.Duration) (string, bool) {
	candidates, err := ports.List()
	if err != nil {
		log.Warn("listing serial ports failed", zap.Error(err))
		return "", false
	}
	if len(candidates) == 0 {
		return "", false
	}
	log.Debug("probing serial ports", zap.Strings("candidates", candidates))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		winner string
		once   sync.Once
	)
	g := new(errgroup.Group)
	for _, endpoint := range candidates {
		endpoint := endpoint
		g.Go(func() error {
			if probe(ctx, tr, endpoint, baud, timeout) {
				once.Do(func() {
					winner = endpoint
					cancel()
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if winner == "" {
		return "", false
	}
	log.Info("OBD-II adapter found", zap.String("port", winner))
	return winner, true
}
