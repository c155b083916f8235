package propagation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/jmhodges/clock"
)

var ErrPropagationTimeout = errors.New("record did not propagate")

type Lookuper interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// TimeoutError is returned once the attempt budget is used up without the
// expected value being observed.
type TimeoutError struct {
	Name     string
	Value    string
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("TXT value %q not found at %s after %d attempts (%s)", e.Value, e.Name, e.Attempts, e.Elapsed)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrPropagationTimeout
}

type Poller struct {
	lookup   Lookuper
	clock    clock.Clock
	interval time.Duration
	attempts int
	debug    bool
}

type Option func(*Poller)

// WithClock replaces the wall clock used for sleeping between attempts.
func WithClock(clk clock.Clock) Option {
	return func(p *Poller) {
		p.clock = clk
	}
}

func WithDebug(debug bool) Option {
	return func(p *Poller) {
		p.debug = debug
	}
}

func NewPoller(lookup Lookuper, interval time.Duration, attempts int, opts ...Option) *Poller {
	p := &Poller{
		lookup:   lookup,
		clock:    clock.New(),
		interval: interval,
		attempts: attempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout is the longest Await can take when the value never shows up.
func (p *Poller) Timeout() time.Duration {
	return time.Duration(p.attempts) * p.interval
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Await polls name until one of its TXT values equals value. Lookup failures
// count as not found yet. Cancelling ctx stops polling before the next attempt.
func (p *Poller) Await(ctx context.Context, name, value string) error {
	start := p.clock.Now()
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		values, err := p.lookup.LookupTXT(ctx, name)
		switch {
		case err != nil:
			if p.debug {
				log.Printf("TXT lookup of %s failed on attempt %d/%d: %v", name, attempt, p.attempts, err)
			}
		case slices.Contains(values, value):
			if p.debug {
				log.Printf("found TXT value of %s on attempt %d/%d", name, attempt, p.attempts)
			}
			return nil
		case p.debug:
			log.Printf("TXT value of %s not visible yet on attempt %d/%d", name, attempt, p.attempts)
		}

		p.clock.Sleep(p.interval)
	}

	return &TimeoutError{
		Name:     name,
		Value:    value,
		Attempts: p.attempts,
		Elapsed:  p.clock.Now().Sub(start),
	}
}
