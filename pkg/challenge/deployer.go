package challenge

import (
	"context"

	"github.com/0xfelix/linode-dns01-hook/pkg/linode"
	"github.com/0xfelix/linode-dns01-hook/pkg/zone"
)

type RecordCreator interface {
	CreateRecord(ctx context.Context, domainID int, record *linode.Record) (int, error)
}

type Deployer struct {
	api    RecordCreator
	policy zone.Policy
	ttl    int
}

func NewDeployer(api RecordCreator, policy zone.Policy, ttl int) *Deployer {
	return &Deployer{
		api:    api,
		policy: policy,
		ttl:    ttl,
	}
}

// Deploy creates the TXT record for c in the zone owning its domain. No API
// call is made when no zone owns the domain.
func (d *Deployer) Deploy(ctx context.Context, zones []zone.Zone, c Challenge) (Deployment, error) {
	target, err := zone.Resolve(c.DomainName, zones, d.policy)
	if err != nil {
		return Deployment{}, &DeployError{Challenge: c, Err: err}
	}

	r := linode.Record{
		Type:   linode.RecordTypeTXT,
		Name:   zone.RecordName(target.Label),
		Target: c.Token,
		TTLSec: d.ttl,
	}

	id, err := d.api.CreateRecord(ctx, target.Zone.ID, &r)
	if err != nil {
		return Deployment{}, &DeployError{Challenge: c, Err: err}
	}

	return Deployment{
		Challenge:  c,
		Zone:       target.Zone,
		RecordName: r.Name,
		RecordID:   id,
	}, nil
}
