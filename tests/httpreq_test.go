package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/onsi/gomega/gstruct"

	"github.com/0xfelix/linode-dns01-hook/pkg/linode"
	"github.com/0xfelix/linode-dns01-hook/tests/libdns"
	"github.com/0xfelix/linode-dns01-hook/tests/liblinode"
	"github.com/0xfelix/linode-dns01-hook/tests/libserver"
)

var _ = Describe("HTTPReq", func() {
	var (
		api    *ghttp.Server
		dns    *libdns.Server
		server *httptest.Server
	)

	BeforeEach(func() {
		api = ghttp.NewServer()
		dns = libdns.New()
		server = libserver.New(libserver.NewConfig(api.URL(), dns.Addr, 3))
	})

	AfterEach(func() {
		server.Close()
		dns.Close()
		api.Close()
	})

	DescribeTable("should present a record", func(ctx context.Context, fqdn string) {
		api.AppendHandlers(
			liblinode.GetDomains(libserver.APIToken, liblinode.Domains()),
			liblinode.PostRecord(libserver.APIToken, libserver.ZoneID, liblinode.NewWWWRecord(), libserver.WWWRecordID),
		)
		dns.SetTXT(libserver.WWWChallenge, libserver.TokenWWW)

		statusCode, resBody := doHTTPReqRequest(ctx, server.URL+"/present", fqdn, libserver.TokenWWW)
		Expect(statusCode).To(Equal(http.StatusOK))
		var resData map[string]string
		Expect(json.Unmarshal(resBody, &resData)).To(Succeed())
		Expect(resData).To(gstruct.MatchAllKeys(gstruct.Keys{
			"fqdn":  Equal(fqdn),
			"value": Equal(libserver.TokenWWW),
		}))
		Expect(api.ReceivedRequests()).To(HaveLen(2))
	},
		Entry("with prefix", libserver.WWWChallenge+"."),
		Entry("without prefix", libserver.WWWDomain),
	)

	It("should clean up a record", func(ctx context.Context) {
		api.AppendHandlers(
			liblinode.GetDomains(libserver.APIToken, liblinode.Domains()),
			liblinode.GetRecords(libserver.APIToken, libserver.ZoneID, liblinode.Records()),
			liblinode.DeleteRecord(libserver.APIToken, libserver.ZoneID, libserver.ApexRecordID),
		)

		statusCode, _ := doHTTPReqRequest(ctx, server.URL+"/cleanup", libserver.ApexChallenge+".", libserver.TokenApex)
		Expect(statusCode).To(Equal(http.StatusOK))
		Expect(api.ReceivedRequests()).To(HaveLen(3))
	})

	It("should fail when the API rejects the record", func(ctx context.Context) {
		api.AppendHandlers(
			liblinode.GetDomains(libserver.APIToken, liblinode.Domains()),
			liblinode.Fail(http.StatusBadRequest, "invalid target"),
		)

		statusCode, _ := doHTTPReqRequest(ctx, server.URL+"/present", libserver.WWWChallenge+".", libserver.TokenWWW)
		Expect(statusCode).To(Equal(http.StatusInternalServerError))
		Expect(dns.Queries()).To(BeNumerically("<=", 3))
	})

	It("should make no api calls for domains outside the allowed ones", func(ctx context.Context) {
		server.Close()
		cfg := libserver.NewConfig(api.URL(), dns.Addr, 3)
		cfg.AllowedDomains = []string{libserver.SubZoneName}
		server = libserver.New(cfg)

		statusCode, _ := doHTTPReqRequest(ctx, server.URL+"/present", libserver.WWWChallenge+".", libserver.TokenWWW)
		Expect(statusCode).To(Equal(http.StatusForbidden))
		Expect(api.ReceivedRequests()).To(BeEmpty())
	})

	It("should make no api calls for malformed requests", func(ctx context.Context) {
		statusCode, resBody := doHTTPReqRequest(ctx, server.URL+"/present", libserver.WWWChallenge, "")
		Expect(statusCode).To(Equal(http.StatusBadRequest))
		Expect(string(resBody)).To(Equal("fqdn or value is missing\n"))
		Expect(api.ReceivedRequests()).To(BeEmpty())
	})
})

func doHTTPReqRequest(ctx context.Context, serverURL, fqdn, value string) (statusCode int, resBody []byte) {
	body, err := json.Marshal(map[string]string{
		"fqdn":  fqdn,
		"value": value,
	})
	Expect(err).ToNot(HaveOccurred())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL, bytes.NewReader(body))
	Expect(err).ToNot(HaveOccurred())
	req.Header.Add("Content-Type", "application/json")

	c := &http.Client{}
	res, err := c.Do(req)
	Expect(err).ToNot(HaveOccurred())

	resBody, err = io.ReadAll(res.Body)
	Expect(err).ToNot(HaveOccurred())
	Expect(res.Body.Close()).To(Succeed())

	return res.StatusCode, resBody
}

func withID(r linode.Record, id int) linode.Record {
	r.ID = id
	return r
}
