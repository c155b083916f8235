package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/0xfelix/linode-dns01-hook/pkg/challenge"
	"github.com/0xfelix/linode-dns01-hook/pkg/linode"
	"github.com/0xfelix/linode-dns01-hook/pkg/zone"
)

// API is the subset of the Linode client used by the orchestrator. It must be
// safe for concurrent use.
type API interface {
	Domains(ctx context.Context) ([]linode.Domain, error)
	Records(ctx context.Context, domainID int) ([]linode.Record, error)
	CreateRecord(ctx context.Context, domainID int, record *linode.Record) (int, error)
	DeleteRecord(ctx context.Context, domainID, recordID int) error
}

type Awaiter interface {
	Await(ctx context.Context, name, value string) error
}

// PollError reports a challenge whose record never became visible.
type PollError struct {
	Challenge challenge.Challenge
	Err       error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("failed to confirm challenge for %s: %v", e.Challenge.DomainName, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}

type Orchestrator struct {
	api      API
	deployer *challenge.Deployer
	locator  *challenge.Locator
	poller   Awaiter
	policy   zone.Policy
}

func New(api API, poller Awaiter, policy zone.Policy, ttl int) *Orchestrator {
	return &Orchestrator{
		api:      api,
		deployer: challenge.NewDeployer(api, policy, ttl),
		locator:  challenge.NewLocator(api),
		poller:   poller,
		policy:   policy,
	}
}

// Deploy creates one TXT record per challenge and waits for every record to
// become visible in DNS. Record creation and polling run concurrently for all
// challenges. Deploy always waits for every started unit and returns all
// failures joined together, the deployments that succeeded are returned even
// when the batch fails.
func (o *Orchestrator) Deploy(ctx context.Context, challenges []challenge.Challenge) ([]challenge.Deployment, error) {
	if len(challenges) == 0 {
		return nil, nil
	}

	zones, err := o.zones(ctx)
	if err != nil {
		return nil, err
	}

	var (
		deployGroup errgroup.Group
		pollGroup   errgroup.Group
		deployed    = make([]challenge.Deployment, len(challenges))
		deployErrs  = make([]error, len(challenges))
		pollErrs    = make([]error, len(challenges))
	)

	for i, c := range challenges {
		pollCtx, cancelPoll := context.WithCancel(ctx)

		deployGroup.Go(func() error {
			deployed[i], deployErrs[i] = o.deployer.Deploy(ctx, zones, c)
			if deployErrs[i] != nil {
				// The record will never show up
				cancelPoll()
			}
			return nil
		})

		pollGroup.Go(func() error {
			defer cancelPoll()
			if err := o.poller.Await(pollCtx, c.FQDN(), c.Token); err != nil {
				pollErrs[i] = &PollError{Challenge: c, Err: err}
			}
			return nil
		})
	}

	_ = deployGroup.Wait()

	var (
		errs      []error
		succeeded []challenge.Deployment
	)
	for i := range challenges {
		if deployErrs[i] != nil {
			log.Printf("%v", deployErrs[i])
			errs = append(errs, deployErrs[i])
			continue
		}
		d := deployed[i]
		log.Printf("added token '%s' for '%s' as record '%s' in zone '%s' - id:%d",
			d.Challenge.Token, d.Challenge.DomainName, d.RecordName, d.Zone.Name, d.RecordID)
		succeeded = append(succeeded, d)
	}

	if len(succeeded) > 0 {
		log.Printf("waiting for %d record(s) to propagate", len(succeeded))
	}
	_ = pollGroup.Wait()

	for i := range challenges {
		// Polls of failed deployments were cancelled and add nothing new.
		if deployErrs[i] == nil && pollErrs[i] != nil {
			log.Printf("%v", pollErrs[i])
			errs = append(errs, pollErrs[i])
		}
	}

	return succeeded, errors.Join(errs...)
}

// Clean removes the TXT record of every challenge. Challenges are handled one
// after another and the first failure aborts the rest of the batch. A record
// that does not exist is skipped.
func (o *Orchestrator) Clean(ctx context.Context, challenges []challenge.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}

	zones, err := o.zones(ctx)
	if err != nil {
		return err
	}

	for _, c := range challenges {
		target, err := zone.Resolve(c.DomainName, zones, o.policy)
		if err != nil {
			return err
		}

		name := zone.RecordName(target.Label)
		id, ok, err := o.locator.Find(ctx, target.Zone.ID, name, c.Token)
		if err != nil {
			return fmt.Errorf("failed to find record %s in zone %s: %w", name, target.Zone.Name, err)
		}
		if !ok {
			log.Printf("no record '%s' with token '%s' in zone '%s', skipping", name, c.Token, target.Zone.Name)
			continue
		}

		if err := o.api.DeleteRecord(ctx, target.Zone.ID, id); err != nil {
			return fmt.Errorf("failed to delete record %d in zone %s: %w", id, target.Zone.Name, err)
		}
		log.Printf("removed record '%s' from zone '%s' - id:%d", name, target.Zone.Name, id)
	}

	return nil
}

func (o *Orchestrator) zones(ctx context.Context) ([]zone.Zone, error) {
	domains, err := o.api.Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}

	zones := make([]zone.Zone, 0, len(domains))
	for _, d := range domains {
		zones = append(zones, zone.Zone{ID: d.ID, Name: d.Domain})
	}
	return zones, nil
}
