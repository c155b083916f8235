package liblinode

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/0xfelix/linode-dns01-hook/pkg/linode"
	"github.com/0xfelix/linode-dns01-hook/tests/libserver"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
	firstPage           = "page=1"
)

func Domains() []linode.Domain {
	return []linode.Domain{
		{
			ID:     libserver.ZoneID,
			Domain: libserver.ZoneName,
		},
		{
			ID:     libserver.SubZoneID,
			Domain: libserver.SubZoneName,
		},
	}
}

func Records() []linode.Record {
	return []linode.Record{
		{
			ID:     libserver.ExistingTXTID,
			Type:   libserver.RecordTypeTXT,
			Name:   libserver.WWWRecordName,
			Target: libserver.ExistingTXT,
		},
		{
			ID:     libserver.WWWRecordID,
			Type:   libserver.RecordTypeTXT,
			Name:   libserver.WWWRecordName,
			Target: libserver.TokenWWW,
		},
		{
			ID:     libserver.ApexRecordID,
			Type:   libserver.RecordTypeTXT,
			Name:   libserver.ApexRecordName,
			Target: libserver.TokenApex,
		},
	}
}

func NewWWWRecord() linode.Record {
	return linode.Record{
		Type:   libserver.RecordTypeTXT,
		Name:   libserver.WWWRecordName,
		Target: libserver.TokenWWW,
		TTLSec: libserver.RecordTTL,
	}
}

func NewApexRecord() linode.Record {
	return linode.Record{
		Type:   libserver.RecordTypeTXT,
		Name:   libserver.ApexRecordName,
		Target: libserver.TokenApex,
		TTLSec: libserver.RecordTTL,
	}
}

func NewSubRecord() linode.Record {
	return linode.Record{
		Type:   libserver.RecordTypeTXT,
		Name:   libserver.SubRecordName,
		Target: libserver.TokenSub,
		TTLSec: libserver.RecordTTL,
	}
}

func verifyToken(token string) http.HandlerFunc {
	return ghttp.VerifyHeader(http.Header{
		headerAuthorization: []string{bearerPrefix + token},
	})
}

func recordsPath(domainID int) string {
	return "/v4/domains/" + strconv.Itoa(domainID) + "/records"
}

func GetDomains(token string, domains []linode.Domain) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodGet, "/v4/domains", firstPage),
		verifyToken(token),
		ghttp.RespondWithJSONEncoded(http.StatusOK, linode.Page[linode.Domain]{
			Data:    domains,
			Page:    1,
			Pages:   1,
			Results: len(domains),
		}),
	)
}

func GetRecords(token string, domainID int, records []linode.Record) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodGet, recordsPath(domainID), firstPage),
		verifyToken(token),
		ghttp.RespondWithJSONEncoded(http.StatusOK, linode.Page[linode.Record]{
			Data:    records,
			Page:    1,
			Pages:   1,
			Results: len(records),
		}),
	)
}

func PostRecord(token string, domainID int, record linode.Record, id int) http.HandlerFunc {
	created := record
	created.ID = id
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodPost, recordsPath(domainID)),
		verifyToken(token),
		ghttp.VerifyJSONRepresenting(record),
		ghttp.RespondWithJSONEncoded(http.StatusOK, created),
	)
}

func DeleteRecord(token string, domainID, recordID int) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodDelete, recordsPath(domainID)+"/"+strconv.Itoa(recordID)),
		verifyToken(token),
		ghttp.RespondWithJSONEncoded(http.StatusOK, struct{}{}),
	)
}

func Fail(status int, reason string) http.HandlerFunc {
	return ghttp.RespondWithJSONEncoded(status, linode.ErrorResponse{
		Errors: []linode.ErrorReason{{Reason: reason}},
	})
}

// RecordStore answers concurrent create calls. Records are keyed by target
// and created with the id registered for that target; unknown targets fail.
type RecordStore struct {
	mu      sync.Mutex
	ids     map[string]int
	created []linode.Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{ids: map[string]int{}}
}

func (s *RecordStore) Expect(target string, id int) *RecordStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[target] = id
	return s
}

func (s *RecordStore) Created() []linode.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]linode.Record(nil), s.created...)
}

func (s *RecordStore) Handler(token string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		verifyToken(token),
		func(w http.ResponseWriter, r *http.Request) {
			record := linode.Record{}
			Expect(json.NewDecoder(r.Body).Decode(&record)).To(Succeed())

			s.mu.Lock()
			id, ok := s.ids[record.Target]
			if ok {
				record.ID = id
				s.created = append(s.created, record)
			}
			s.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				Expect(json.NewEncoder(w).Encode(linode.ErrorResponse{
					Errors: []linode.ErrorReason{{Field: "target", Reason: "unexpected target"}},
				})).To(Succeed())
				return
			}
			Expect(json.NewEncoder(w).Encode(record)).To(Succeed())
		},
	)
}
