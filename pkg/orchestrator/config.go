package orchestrator

import (
	"github.com/0xfelix/linode-dns01-hook/pkg/config"
	"github.com/0xfelix/linode-dns01-hook/pkg/linode"
	"github.com/0xfelix/linode-dns01-hook/pkg/propagation"
	"github.com/0xfelix/linode-dns01-hook/pkg/zone"
)

// NewFromConfig wires the Linode client, the DNS lookup and the poller
// described by cfg into an Orchestrator.
func NewFromConfig(cfg *config.Config, opts ...propagation.Option) (*Orchestrator, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}

	policy, err := zone.ParsePolicy(cfg.ZoneMatch)
	if err != nil {
		return nil, err
	}

	lookup := propagation.NewDNSLookup(cfg.ResolverAddr(), cfg.RequestTimeout())
	opts = append([]propagation.Option{propagation.WithDebug(cfg.Debug)}, opts...)
	poller := propagation.NewPoller(lookup, cfg.PollInterval, cfg.PollAttempts, opts...)

	return New(linode.NewClient(cfg), poller, policy, cfg.RecordTTL), nil
}
