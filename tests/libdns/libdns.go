package libdns

import (
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/miekg/dns"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const txtTTL = 60

// Server is an in-process resolver answering TXT queries from memory.
type Server struct {
	Addr string

	mu      sync.RWMutex
	records map[string][][]string
	queries atomic.Int32
	server  *dns.Server
}

func New() *Server {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())

	s := &Server{
		Addr:    pc.LocalAddr().String(),
		records: map[string][][]string{},
	}

	started := make(chan struct{})
	s.server = &dns.Server{
		PacketConn:        pc,
		Handler:           dns.HandlerFunc(s.handle),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() {
		defer GinkgoRecover()
		_ = s.server.ActivateAndServe()
	}()
	<-started

	return s
}

func (s *Server) Close() {
	Expect(s.server.Shutdown()).To(Succeed())
}

// SetTXT publishes one single-string TXT record per value at name.
func (s *Server) SetTXT(name string, values ...string) {
	for _, v := range values {
		s.AddTXT(name, v)
	}
}

// AddTXT publishes a TXT record made of the given character strings.
func (s *Server) AddTXT(name string, strs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dns.Fqdn(strings.ToLower(name))
	s.records[key] = append(s.records[key], strs)
}

func (s *Server) Queries() int {
	return int(s.queries.Load())
}

func (s *Server) handle(w dns.ResponseWriter, r *dns.Msg) {
	s.queries.Add(1)

	m := new(dns.Msg)
	m.SetReply(r)

	if len(r.Question) == 1 && r.Question[0].Qtype == dns.TypeTXT {
		q := r.Question[0]
		s.mu.RLock()
		for _, strs := range s.records[strings.ToLower(q.Name)] {
			m.Answer = append(m.Answer, &dns.TXT{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: txtTTL},
				Txt: strs,
			})
		}
		s.mu.RUnlock()
	}

	if len(m.Answer) == 0 {
		m.Rcode = dns.RcodeNameError
	}
	_ = w.WriteMsg(m)
}
