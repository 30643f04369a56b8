package models

import (
	"time"

	"github.com/goccy/go-json"
)

// UnknownHost is used when a record carries no account id
const UnknownHost = "unknown"

// AccountIDField is the record key that names the originating account
const AccountIDField = "accountId"

// Record is one finding exactly as it was received. Objects decode to
// map[string]interface{}, numbers to json.Number.
type Record = interface{}

// Event represents a log event to be sent to Splunk HEC
type Event struct {
	Time       time.Time
	Host       string
	Source     string
	SourceType string
	Index      string
	Event      interface{}
}

// Normalizer turns records into HEC events with fixed source metadata
type Normalizer struct {
	Source     string
	SourceType string
	Index      string
	// Now defaults to time.Now
	Now func() time.Time
}

// Normalize wraps a record in an Event. It never fails: records that are not
// objects, or objects without a usable account id, get UnknownHost. The
// record itself is passed through untouched.
func (n Normalizer) Normalize(record Record) *Event {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return &Event{
		Time:       now().Truncate(time.Second),
		Host:       HostOf(record),
		Source:     n.Source,
		SourceType: n.SourceType,
		Index:      n.Index,
		Event:      record,
	}
}

// HostOf returns the account id of a record, or UnknownHost
func HostOf(record Record) string {
	m, ok := record.(map[string]interface{})
	if !ok {
		return UnknownHost
	}
	switch v := m[AccountIDField].(type) {
	case string:
		if v != "" {
			return v
		}
	case json.Number:
		return v.String()
	}
	return UnknownHost
}
