package ratelimit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// Limiter throttles order submissions per client IP using a sliding window
// persisted to its own file. The file is separate from the order ledger so a
// burst of throttle checks never contends with ledger writers.
//
// Like the ledger, the read-modify-write cycle runs under one exclusive flock
// so concurrent requests from the same IP cannot both slip under the limit.
type Limiter struct {
	path   string
	max    int
	window time.Duration
	logg   *logger.Logger
	now    func() time.Time
}

// entries maps client IP to the unix timestamps of its recent requests.
type entries map[string][]int64

// NewLimiter builds a Limiter writing to path. max requests are allowed per
// IP within the trailing window.
func NewLimiter(path string, max int, window time.Duration, logg *logger.Logger) (*Limiter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("rate limit file path is required")
	}
	if max <= 0 {
		return nil, fmt.Errorf("max requests must be positive")
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create rate limit directory")
		}
	}
	return &Limiter{
		path:   path,
		max:    max,
		window: window,
		logg:   logg,
		now:    time.Now,
	}, nil
}

// Allow records one request for ip and reports whether it is within the
// limit. A denied request is not recorded, so a throttled client does not
// push its own window further out.
func (l *Limiter) Allow(ctx context.Context, ip string) (bool, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "client ip is required")
	}

	lock := flock.New(l.path)
	if err := lock.Lock(); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "acquire rate limit lock")
	}
	defer lock.Unlock()

	all, err := l.readLocked()
	if err != nil {
		return false, err
	}

	cutoff := l.now().Add(-l.window).Unix()
	recent := make([]int64, 0, len(all[ip]))
	for _, ts := range all[ip] {
		if ts > cutoff {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.max {
		all[ip] = recent
		if err := l.writeLocked(all); err != nil {
			return false, err
		}
		if l.logg != nil {
			l.logg.Warn(l.logg.WithClientIP(ctx, ip), "submission rate limit exceeded")
		}
		return false, nil
	}

	all[ip] = append(recent, l.now().Unix())
	if err := l.writeLocked(all); err != nil {
		return false, err
	}
	return true, nil
}

// Prune drops every entry older than the window across all IPs. Run
// periodically so the file does not grow with one key per historical visitor.
func (l *Limiter) Prune(ctx context.Context) (int, error) {
	lock := flock.New(l.path)
	if err := lock.Lock(); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "acquire rate limit lock")
	}
	defer lock.Unlock()

	all, err := l.readLocked()
	if err != nil {
		return 0, err
	}

	cutoff := l.now().Add(-l.window).Unix()
	removed := 0
	for ip, stamps := range all {
		recent := make([]int64, 0, len(stamps))
		for _, ts := range stamps {
			if ts > cutoff {
				recent = append(recent, ts)
			}
		}
		removed += len(stamps) - len(recent)
		if len(recent) == 0 {
			delete(all, ip)
			continue
		}
		all[ip] = recent
	}

	if err := l.writeLocked(all); err != nil {
		return 0, err
	}
	return removed, nil
}

func (l *Limiter) readLocked() (entries, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read rate limit file")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return entries{}, nil
	}
	var all entries
	if err := json.Unmarshal(raw, &all); err != nil {
		// A mangled throttle file should not block orders; start fresh.
		return entries{}, nil
	}
	if all == nil {
		all = entries{}
	}
	return all, nil
}

func (l *Limiter) writeLocked(all entries) error {
	encoded, err := json.Marshal(all)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encode rate limit file")
	}
	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "open rate limit file")
	}
	if _, err := file.Write(encoded); err != nil {
		file.Close()
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write rate limit file")
	}
	return file.Close()
}
