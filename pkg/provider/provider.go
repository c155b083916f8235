// Package provider exposes the orchestrator as a lego DNS-01 provider for
// programs that drive ACME issuance through lego.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"

	dnschallenge "github.com/0xfelix/linode-dns01-hook/pkg/challenge"
)

var (
	_ challenge.Provider        = (*DNSProvider)(nil)
	_ challenge.ProviderTimeout = (*DNSProvider)(nil)
)

type Batcher interface {
	Deploy(ctx context.Context, challenges []dnschallenge.Challenge) ([]dnschallenge.Deployment, error)
	Clean(ctx context.Context, challenges []dnschallenge.Challenge) error
}

type DNSProvider struct {
	batcher  Batcher
	timeout  time.Duration
	interval time.Duration
}

// NewDNSProvider returns a provider deploying through batcher. timeout and
// interval are reported to lego for its own propagation check.
func NewDNSProvider(batcher Batcher, timeout, interval time.Duration) (*DNSProvider, error) {
	if batcher == nil {
		return nil, errors.New("linode: batcher is nil")
	}
	return &DNSProvider{
		batcher:  batcher,
		timeout:  timeout,
		interval: interval,
	}, nil
}

// Present creates the TXT record for domain and waits until it is visible.
func (d *DNSProvider) Present(domain, _, keyAuth string) error {
	_, err := d.batcher.Deploy(context.Background(), []dnschallenge.Challenge{toChallenge(domain, keyAuth)})
	return err
}

func (d *DNSProvider) CleanUp(domain, _, keyAuth string) error {
	return d.batcher.Clean(context.Background(), []dnschallenge.Challenge{toChallenge(domain, keyAuth)})
}

// Timeout covers the record creation on top of the configured polling.
func (d *DNSProvider) Timeout() (timeout, interval time.Duration) {
	return d.timeout + dns01.DefaultPropagationTimeout, d.interval
}

func toChallenge(domain, keyAuth string) dnschallenge.Challenge {
	info := dns01.GetChallengeInfo(domain, keyAuth)
	return dnschallenge.Challenge{
		DomainName: dns01.UnFqdn(domain),
		Token:      info.Value,
	}
}
