package libserver

const (
	APIToken        = "test-api-token" //#nosec G101
	ZoneName        = "test.tld"
	ZoneID          = 1
	SubZoneName     = "sub.test.tld"
	SubZoneID       = 2
	RecordTTL       = 300
	RecordTypeTXT   = "TXT"
	ChallengeLabel  = "_acme-challenge"
	WWWDomain       = "www.test.tld"
	WWWRecordName   = "_acme-challenge.www"
	WWWChallenge    = "_acme-challenge.www.test.tld"
	ApexRecordName  = "_acme-challenge"
	ApexChallenge   = "_acme-challenge.test.tld"
	SubDomain       = "host.sub.test.tld"
	SubRecordName   = "_acme-challenge.host"
	UnknownDomain   = "www.unknown.tld"
	TokenWWW        = "TOKEN1"
	TokenApex       = "TOKEN2"
	TokenSub        = "TOKEN3"
	ExistingTXT     = "randomvalue"
	WWWRecordID     = 11
	ApexRecordID    = 12
	SubRecordID     = 13
	ExistingTXTID   = 10
	TokenFileName   = "unused-token-filename"
	InvalidTokenMsg = "Invalid Token"
)
