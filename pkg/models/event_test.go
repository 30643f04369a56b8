package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 10, 30, 15, 987654321, time.UTC)
}

func TestNormalize_Fields(t *testing.T) {
	n := Normalizer{Source: "aws:accessanalyzer", SourceType: "aws:accessanalyzer:finding", Index: "security", Now: fixedClock}
	record := map[string]interface{}{"accountId": "123456789012", "status": "ACTIVE"}

	event := n.Normalize(record)

	assert.Equal(t, "123456789012", event.Host)
	assert.Equal(t, "aws:accessanalyzer", event.Source)
	assert.Equal(t, "aws:accessanalyzer:finding", event.SourceType)
	assert.Equal(t, "security", event.Index)
	assert.Equal(t, int64(1714559415), event.Time.Unix())
	assert.Zero(t, event.Time.Nanosecond())
	assert.Equal(t, record, event.Event)
}

func TestNormalize_DefaultClock(t *testing.T) {
	before := time.Now().Unix()
	event := Normalizer{}.Normalize(map[string]interface{}{})
	assert.GreaterOrEqual(t, event.Time.Unix(), before)
	assert.LessOrEqual(t, event.Time.Unix(), time.Now().Unix())
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{"account id", map[string]interface{}{"accountId": "123456789012"}, "123456789012"},
		{"numeric account id", map[string]interface{}{"accountId": json.Number("111111111111")}, "111111111111"},
		{"missing", map[string]interface{}{"resource": "arn:aws:s3:::bucket"}, UnknownHost},
		{"empty object", map[string]interface{}{}, UnknownHost},
		{"empty string", map[string]interface{}{"accountId": ""}, UnknownHost},
		{"null", map[string]interface{}{"accountId": nil}, UnknownHost},
		{"wrong type", map[string]interface{}{"accountId": []interface{}{"a"}}, UnknownHost},
		{"not an object", "plain string", UnknownHost},
		{"nil record", nil, UnknownHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HostOf(tt.record))
		})
	}
}

func TestNormalize_EventUnmodified(t *testing.T) {
	record := map[string]interface{}{
		"accountId": "111111111111",
		"resource":  "arn:aws:iam::111111111111:role/x",
		"principal": map[string]interface{}{"AWS": []interface{}{"*", "arn:aws:iam::222222222222:root"}},
		"condition": map[string]interface{}{},
		"count":     json.Number("12345678901234567890"),
	}
	want := map[string]interface{}{
		"accountId": "111111111111",
		"resource":  "arn:aws:iam::111111111111:role/x",
		"principal": map[string]interface{}{"AWS": []interface{}{"*", "arn:aws:iam::222222222222:root"}},
		"condition": map[string]interface{}{},
		"count":     json.Number("12345678901234567890"),
	}

	event := Normalizer{Now: fixedClock}.Normalize(record)
	assert.Equal(t, want, event.Event)
}

func TestEvent_Payload(t *testing.T) {
	event := Normalizer{Source: "s", SourceType: "st", Now: fixedClock}.Normalize(map[string]interface{}{"accountId": "123456789012"})

	b, err := json.Marshal(event.Payload())
	assert.NoError(t, err)
	assert.JSONEq(t, `{"time":1714559415,"host":"123456789012","source":"s","sourcetype":"st","event":{"accountId":"123456789012"}}`, string(b))

	event.Index = "security"
	b, err = json.Marshal(event.Payload())
	assert.NoError(t, err)
	assert.Contains(t, string(b), `"index":"security"`)
}
