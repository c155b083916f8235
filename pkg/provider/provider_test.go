package provider_test

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-acme/lego/v4/challenge/dns01"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/0xfelix/linode-dns01-hook/pkg/challenge"
	"github.com/0xfelix/linode-dns01-hook/pkg/provider"
)

type fakeBatcher struct {
	deployed []challenge.Challenge
	cleaned  []challenge.Challenge
	err      error
}

func (f *fakeBatcher) Deploy(_ context.Context, challenges []challenge.Challenge) ([]challenge.Deployment, error) {
	f.deployed = append(f.deployed, challenges...)
	return nil, f.err
}

func (f *fakeBatcher) Clean(_ context.Context, challenges []challenge.Challenge) error {
	f.cleaned = append(f.cleaned, challenges...)
	return f.err
}

var _ = Describe("DNSProvider", func() {
	const (
		domain  = "www.example.com"
		keyAuth = "token.thumbprint"
	)

	var (
		batcher *fakeBatcher
		p       *provider.DNSProvider
	)

	BeforeEach(func() {
		// Keep lego from following CNAMEs over the network
		Expect(os.Setenv("LEGO_DISABLE_CNAME_SUPPORT", "true")).To(Succeed())
		DeferCleanup(os.Unsetenv, "LEGO_DISABLE_CNAME_SUPPORT")

		batcher = &fakeBatcher{}
		var err error
		p, err = provider.NewDNSProvider(batcher, 20*time.Minute, 15*time.Second)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should present the key authorization digest", func() {
		Expect(p.Present(domain+".", "token", keyAuth)).To(Succeed())
		Expect(batcher.deployed).To(ConsistOf(challenge.Challenge{
			DomainName: domain,
			Token:      dns01.GetChallengeInfo(domain, keyAuth).Value,
		}))
		Expect(batcher.deployed[0].Token).ToNot(Equal(keyAuth))
	})

	It("should clean up the same record", func() {
		Expect(p.CleanUp(domain, "token", keyAuth)).To(Succeed())
		Expect(batcher.cleaned).To(ConsistOf(challenge.Challenge{
			DomainName: domain,
			Token:      dns01.GetChallengeInfo(domain, keyAuth).Value,
		}))
	})

	It("should pass failures on", func() {
		batcher.err = errors.New("zone not found")
		Expect(p.Present(domain, "token", keyAuth)).To(MatchError("zone not found"))
		Expect(p.CleanUp(domain, "token", keyAuth)).To(MatchError("zone not found"))
	})

	It("should leave lego room for record creation", func() {
		timeout, interval := p.Timeout()
		Expect(timeout).To(Equal(20*time.Minute + dns01.DefaultPropagationTimeout))
		Expect(interval).To(Equal(15 * time.Second))
	})

	It("should require a batcher", func() {
		_, err := provider.NewDNSProvider(nil, time.Minute, time.Second)
		Expect(err).To(HaveOccurred())
	})
})
