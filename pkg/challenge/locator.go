package challenge

import (
	"context"

	"github.com/0xfelix/linode-dns01-hook/pkg/linode"
)

type RecordLister interface {
	Records(ctx context.Context, domainID int) ([]linode.Record, error)
}

type Locator struct {
	api RecordLister
}

func NewLocator(api RecordLister) *Locator {
	return &Locator{api: api}
}

// Find returns the id of the TXT record in zoneID with the given name and
// value. A missing record is reported through ok and is not an error.
func (l *Locator) Find(ctx context.Context, zoneID int, name, value string) (id int, ok bool, err error) {
	records, err := l.api.Records(ctx, zoneID)
	if err != nil {
		return 0, false, err
	}

	for _, r := range records {
		if r.Type == linode.RecordTypeTXT && r.Name == name && r.Target == value {
			return r.ID, true, nil
		}
	}

	return 0, false, nil
}
