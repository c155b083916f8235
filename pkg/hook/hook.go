// Package hook implements the dehydrated hook interface. The first argument
// names the hook, the rest are its parameters. Hooks which need no action
// are accepted silently.
package hook

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/0xfelix/linode-dns01-hook/pkg/challenge"
)

const (
	DeployChallenge  = "deploy_challenge"
	CleanChallenge   = "clean_challenge"
	DeployCert       = "deploy_cert"
	UnchangedCert    = "unchanged_cert"
	InvalidChallenge = "invalid_challenge"
	ExitHook         = "exit_hook"
)

var separator = strings.Repeat("*", 82)

type Batcher interface {
	Deploy(ctx context.Context, challenges []challenge.Challenge) ([]challenge.Deployment, error)
	Clean(ctx context.Context, challenges []challenge.Challenge) error
}

// Dispatcher runs hooks. The batcher is only created for hooks that talk to
// the DNS provider, so informational hooks work without credentials.
type Dispatcher struct {
	out        io.Writer
	newBatcher func() (Batcher, error)
}

func NewDispatcher(out io.Writer, newBatcher func() (Batcher, error)) *Dispatcher {
	return &Dispatcher{out: out, newBatcher: newBatcher}
}

// Run executes the hook named by args[0] and returns the process exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		return 0
	}

	var err error
	switch name, params := args[0], args[1:]; name {
	case DeployChallenge:
		err = d.deployChallenge(ctx, params)
	case CleanChallenge:
		err = d.cleanChallenge(ctx, params)
	case DeployCert:
		if len(params) > 2 {
			d.banner(
				"Certificate created for "+params[0],
				"Certfile path: "+params[2],
			)
		}
	case UnchangedCert:
		if len(params) > 2 {
			d.banner(
				"Certificate for "+params[0]+" is already valid",
				"Certfile path: "+params[2],
			)
		}
	case InvalidChallenge:
		if len(params) > 1 {
			d.banner(fmt.Sprintf("CHALLENGE FAILED FOR DOMAIN %s WITH RESPONSE %s", params[0], params[1]))
		}
	case ExitHook:
		if len(params) > 0 {
			d.println("Process ended with errors: " + params[0])
		}
	}

	if err != nil {
		log.Printf("%s failed: %v", args[0], err)
		return 1
	}
	return 0
}

func (d *Dispatcher) deployChallenge(ctx context.Context, params []string) error {
	d.println(separator)
	d.println("Deploying TXT records for listed challenges:")

	challenges, err := challenge.FromHookArgs(params)
	if err != nil {
		return err
	}

	b, err := d.newBatcher()
	if err != nil {
		return err
	}

	deployed, err := b.Deploy(ctx, challenges)
	for _, dep := range deployed {
		d.println(fmt.Sprintf("Added token '%s' for '%s' - id:%d", dep.Challenge.Token, dep.Challenge.FQDN(), dep.RecordID))
	}
	if err != nil {
		return err
	}

	d.println("All records confirmed as available")
	d.println(separator)
	return nil
}

func (d *Dispatcher) cleanChallenge(ctx context.Context, params []string) error {
	challenges, err := challenge.FromHookArgs(params)
	if err != nil {
		return err
	}

	b, err := d.newBatcher()
	if err != nil {
		return err
	}

	return b.Clean(ctx, challenges)
}

func (d *Dispatcher) banner(lines ...string) {
	d.println(separator)
	for _, l := range lines {
		d.println(l)
	}
	d.println(separator)
}

func (d *Dispatcher) println(s string) {
	_, _ = fmt.Fprintln(d.out, s)
}
