package common

// CommodityType identifies the utility behind a metering point.
type CommodityType string

const (
	// CommodityElectricity electricity metering point
	CommodityElectricity CommodityType = "ELECTRICITY"
	// CommodityGas gas metering point
	CommodityGas CommodityType = "GAS"
)

// MeteringPoint describes one metering point the credentials grant access to.
// Points are read fresh from the feed on every query and never cached.
type MeteringPoint struct {
	EIC           string        `json:"eic"`                 // Energy Identification Code
	CommodityType CommodityType `json:"commodityType"`       // ELECTRICITY or GAS
	ValidFrom     string        `json:"validFrom,omitempty"` // access period start, date string
	ValidTo       string        `json:"validTo,omitempty"`   // access period end, date string
}

// Measurement is a single metering record as returned by the feed. The field
// set varies by commodity and resolution (energy in/out, unit, ...), so the
// record keeps its raw decoded shape. The timestamp string is the record
// identity and is compared exactly, never parsed.
type Measurement map[string]any

// Timestamp returns the record's identity key, or "" when absent.
func (m Measurement) Timestamp() string {
	ts, _ := m["timestamp"].(string)
	return ts
}

// Unit returns the measurement unit (e.g. "kWh"), or "" when absent.
func (m Measurement) Unit() string {
	u, _ := m["unit"].(string)
	return u
}

// Float returns the named numeric field. JSON numbers decode as float64, so
// any other type reports false.
func (m Measurement) Float(key string) (float64, bool) {
	v, ok := m[key].(float64)
	return v, ok
}

// HistorySnapshot is the persisted form of one EIC's measurement cache. The
// document is overwritten in full on every save; there is no append format.
type HistorySnapshot struct {
	EIC          string        `json:"eic"`
	LastFetch    string        `json:"last_fetch"`
	PointCount   int           `json:"point_count"`
	Measurements []Measurement `json:"measurements"`
}
