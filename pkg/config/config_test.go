package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/0xfelix/linode-dns01-hook/pkg/config"
)

func setenv(key, value string) {
	old, ok := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if ok {
			Expect(os.Setenv(key, old)).To(Succeed())
		} else {
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})
}

var _ = Describe("Config", func() {
	BeforeEach(func() {
		for _, key := range []string{
			"LINODE_API_URL", "LINODE_TOKEN", "TIMEOUT", "RECORD_TTL", "DNS_RESOLVER", "POLL_INTERVAL",
			"POLL_ATTEMPTS", "ZONE_MATCH", "LISTEN_ADDR", "HTTPREQ_USERNAME", "HTTPREQ_PASSWORD", "DEBUG",
			"TRUSTED_PROXIES", "ALLOWED_DOMAINS",
		} {
			if old, ok := os.LookupEnv(key); ok {
				Expect(os.Unsetenv(key)).To(Succeed())
				DeferCleanup(os.Setenv, key, old)
			}
		}
	})

	It("should apply defaults", func() {
		cfg, err := config.Parse()
		Expect(err).ToNot(HaveOccurred())
		Expect(*cfg).To(Equal(config.Config{
			BaseURL:      "https://api.linode.com/v4",
			Timeout:      15,
			RecordTTL:    300,
			Resolver:     "92.123.94.2:53",
			PollInterval: 15 * time.Second,
			PollAttempts: 80,
			ZoneMatch:    config.ZoneMatchLongest,
			ListenAddr:   ":8080",

			AllowedDomains: []string{"*"},
		}))
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.RequireToken()).To(MatchError("LINODE_TOKEN is not set"))
		Expect(cfg.RequestTimeout()).To(Equal(15 * time.Second))
	})

	It("should read the environment", func() {
		setenv("LINODE_API_URL", "http://localhost:1234/v4")
		setenv("LINODE_TOKEN", "secret")
		setenv("TIMEOUT", "3")
		setenv("DNS_RESOLVER", "9.9.9.9")
		setenv("POLL_INTERVAL", "2s")
		setenv("POLL_ATTEMPTS", "5")
		setenv("ZONE_MATCH", "first")
		setenv("HTTPREQ_USERNAME", "user")
		setenv("HTTPREQ_PASSWORD", "pass")
		setenv("DEBUG", "true")
		setenv("TRUSTED_PROXIES", "10.0.0.1,192.168.0.0/16")
		setenv("ALLOWED_DOMAINS", "example.com,example.org")

		cfg, err := config.Parse()
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.BaseURL).To(Equal("http://localhost:1234/v4"))
		Expect(cfg.Token).To(Equal("secret"))
		Expect(cfg.RequestTimeout()).To(Equal(3 * time.Second))
		Expect(cfg.ResolverAddr()).To(Equal("9.9.9.9:53"))
		Expect(cfg.PollInterval).To(Equal(2 * time.Second))
		Expect(cfg.PollAttempts).To(Equal(5))
		Expect(cfg.ZoneMatch).To(Equal(config.ZoneMatchFirst))
		Expect(cfg.Auth).To(Equal(config.Auth{Username: "user", Password: "pass"}))
		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.TrustedProxies).To(Equal([]string{"10.0.0.1", "192.168.0.0/16"}))
		Expect(cfg.AllowedDomains).To(Equal([]string{"example.com", "example.org"}))
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.RequireToken()).To(Succeed())
	})

	It("should fail on malformed values", func() {
		setenv("POLL_ATTEMPTS", "many")

		_, err := config.Parse()
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("should reject invalid settings", func(mutate func(*config.Config), expected string) {
		cfg, err := config.Parse()
		Expect(err).ToNot(HaveOccurred())
		mutate(cfg)
		Expect(cfg.Validate()).To(MatchError(ContainSubstring(expected)))
	},
		Entry("zone match", func(c *config.Config) { c.ZoneMatch = "shortest" }, `invalid zone match policy "shortest"`),
		Entry("attempts", func(c *config.Config) { c.PollAttempts = 0 }, "poll attempts must be at least 1, got 0"),
		Entry("interval", func(c *config.Config) { c.PollInterval = -time.Second }, "invalid poll interval -1s"),
		Entry("resolver", func(c *config.Config) { c.Resolver = "" }, "DNS_RESOLVER must not be empty"),
		Entry("base url", func(c *config.Config) { c.BaseURL = "" }, "LINODE_API_URL must not be empty"),
		Entry("trusted proxy", func(c *config.Config) { c.TrustedProxies = []string{"proxy.local"} }, `invalid trusted proxy "proxy.local"`),
		Entry("half auth", func(c *config.Config) { c.Auth.Username = "user" }, "must be set together"),
	)

	It("should keep resolver ports", func() {
		cfg := &config.Config{Resolver: "[2001:db8::1]:5353"}
		Expect(cfg.ResolverAddr()).To(Equal("[2001:db8::1]:5353"))
	})
})
