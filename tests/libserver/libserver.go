package libserver

import (
	"net/http/httptest"
	"time"

	. "github.com/onsi/gomega"

	"github.com/0xfelix/linode-dns01-hook/pkg/app"
	"github.com/0xfelix/linode-dns01-hook/pkg/config"
	"github.com/0xfelix/linode-dns01-hook/pkg/orchestrator"
)

// NewConfig returns a config pointing at the mock API and DNS server with
// short polling suitable for tests.
func NewConfig(apiURL, resolver string, attempts int) *config.Config {
	return &config.Config{
		BaseURL:      apiURL + "/v4",
		Token:        APIToken,
		Timeout:      5,
		RecordTTL:    RecordTTL,
		Resolver:     resolver,
		PollInterval: 10 * time.Millisecond,
		PollAttempts: attempts,
		ZoneMatch:    config.ZoneMatchLongest,

		AllowedDomains: []string{"*"},
	}
}

// New starts an httpreq server backed by a real orchestrator.
func New(cfg *config.Config) *httptest.Server {
	o, err := orchestrator.NewFromConfig(cfg)
	Expect(err).ToNot(HaveOccurred())
	handler, err := app.New(cfg, o)
	Expect(err).ToNot(HaveOccurred())
	return httptest.NewServer(handler)
}
