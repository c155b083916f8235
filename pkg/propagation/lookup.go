package propagation

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	udpNetwork        = "udp"
	tcpNetwork        = "tcp"
	maxUDPSize uint16 = 1232
)

// DNSLookup queries TXT records from a single fixed resolver.
type DNSLookup struct {
	server  string
	timeout time.Duration
}

func NewDNSLookup(server string, timeout time.Duration) *DNSLookup {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "domain")
	}
	return &DNSLookup{server: server, timeout: timeout}
}

// LookupTXT returns all TXT values of name. Character strings of a single
// record are concatenated.
func (l *DNSLookup) LookupTXT(ctx context.Context, name string) ([]string, error) {
	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	q.RecursionDesired = true
	q.SetEdns0(maxUDPSize, false)

	r, err := l.exchange(ctx, q, udpNetwork)
	if err != nil {
		return nil, err
	}
	// If truncated, try again with TCP
	if r.Truncated {
		r, err = l.exchange(ctx, q, tcpNetwork)
		if err != nil {
			return nil, err
		}
	}

	if r.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("TXT lookup of %s returned %s", name, dns.RcodeToString[r.Rcode])
	}

	var values []string
	for _, rr := range r.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			values = append(values, strings.Join(txt.Txt, ""))
		}
	}

	return values, nil
}

func (l *DNSLookup) exchange(ctx context.Context, q *dns.Msg, network string) (*dns.Msg, error) {
	client := &dns.Client{
		Net:     network,
		UDPSize: maxUDPSize,
		Timeout: l.timeout,
	}
	r, _, err := client.ExchangeContext(ctx, q, l.server)
	return r, err
}
