package models

// Payload is the HEC wire shape of an event
type Payload struct {
	Time       int64       `json:"time"`
	Host       string      `json:"host"`
	Source     string      `json:"source"`
	SourceType string      `json:"sourcetype"`
	Index      string      `json:"index,omitempty"`
	Event      interface{} `json:"event"`
}

// Payload converts the event to its wire shape
func (e *Event) Payload() Payload {
	return Payload{
		Time:       e.Time.Unix(),
		Host:       e.Host,
		Source:     e.Source,
		SourceType: e.SourceType,
		Index:      e.Index,
		Event:      e.Event,
	}
}
