package challenge

import (
	"errors"
	"fmt"

	"github.com/0xfelix/linode-dns01-hook/pkg/zone"
)

// hookGroupSize is the number of hook arguments per challenge: domain,
// token filename and token value.
const hookGroupSize = 3

type Challenge struct {
	DomainName string
	Token      string
}

// FQDN is the name the challenge TXT record is published at.
func (c Challenge) FQDN() string {
	return zone.ChallengeFQDN(c.DomainName)
}

// Deployment describes a challenge record created at the provider.
type Deployment struct {
	Challenge  Challenge
	Zone       zone.Zone
	RecordName string
	RecordID   int
}

// FromHookArgs groups hook arguments into challenges. Arguments come in
// groups of domain, token filename and token value, the filename is unused.
func FromHookArgs(args []string) ([]Challenge, error) {
	if len(args)%hookGroupSize != 0 {
		return nil, fmt.Errorf("expected arguments in groups of %d, got %d", hookGroupSize, len(args))
	}

	challenges := make([]Challenge, 0, len(args)/hookGroupSize)
	for i := 0; i < len(args); i += hookGroupSize {
		c := Challenge{DomainName: args[i], Token: args[i+2]}
		if c.DomainName == "" {
			return nil, errors.New("empty domain name in hook arguments")
		}
		challenges = append(challenges, c)
	}

	return challenges, nil
}

// DeployError wraps any failure to create the record of a single challenge.
type DeployError struct {
	Challenge Challenge
	Err       error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("failed to deploy challenge for %s: %v", e.Challenge.DomainName, e.Err)
}

func (e *DeployError) Unwrap() error {
	return e.Err
}
