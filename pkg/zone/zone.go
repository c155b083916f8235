package zone

import (
	"errors"
	"fmt"
	"strings"
)

// ChallengeLabel is the leftmost label of every DNS-01 challenge record.
const ChallengeLabel = "_acme-challenge"

var ErrZoneNotFound = errors.New("zone not found")

type Zone struct {
	ID   int
	Name string
}

// Target is the zone owning a domain together with the domain's label
// relative to that zone. Label is empty for the zone apex.
type Target struct {
	Label string
	Zone  Zone
}

type Policy int

const (
	// LongestMatch picks the most specific zone owning a domain.
	LongestMatch Policy = iota
	// FirstMatch picks the first owning zone in list order.
	FirstMatch
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "longest":
		return LongestMatch, nil
	case "first":
		return FirstMatch, nil
	default:
		return 0, fmt.Errorf("unknown zone match policy %q", s)
	}
}

func (p Policy) String() string {
	if p == FirstMatch {
		return "first"
	}
	return "longest"
}

// Resolve finds the zone owning domainName. A zone owns a domain when the
// domain equals the zone name or ends with "." followed by it. Names are
// compared case-insensitively and a single trailing root dot is ignored.
func Resolve(domainName string, zones []Zone, policy Policy) (Target, error) {
	name := normalize(domainName)
	if name == "" {
		return Target{}, fmt.Errorf("%w for empty domain", ErrZoneNotFound)
	}

	found := false
	best := Target{}
	for _, z := range zones {
		zoneName := normalize(z.Name)
		if zoneName == "" {
			continue
		}

		var label string
		switch {
		case name == zoneName:
			label = ""
		case strings.HasSuffix(name, "."+zoneName):
			label = name[:len(name)-len(zoneName)-1]
		default:
			continue
		}

		if policy == FirstMatch {
			return Target{Label: label, Zone: z}, nil
		}
		if !found || len(zoneName) > len(normalize(best.Zone.Name)) {
			best = Target{Label: label, Zone: z}
			found = true
		}
	}

	if !found {
		return Target{}, fmt.Errorf("%w for %s", ErrZoneNotFound, domainName)
	}
	return best, nil
}

// RecordName returns the challenge record name relative to the zone for a
// domain with the given label.
func RecordName(label string) string {
	if label == "" {
		return ChallengeLabel
	}
	return ChallengeLabel + "." + label
}

// ChallengeFQDN returns the fully-qualified challenge record name of domainName.
func ChallengeFQDN(domainName string) string {
	return ChallengeLabel + "." + normalize(domainName)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}
