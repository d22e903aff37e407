package history

import (
	"sort"

	"github.com/estfeed/metering_sdk/common"
)

// sortMeasurements orders measurements ascending by their timestamp string.
// Timestamps use a fixed-width layout, so lexical order is chronological.
func sortMeasurements(measurements []common.Measurement) {
	sort.SliceStable(measurements, func(i, j int) bool {
		return measurements[i].Timestamp() < measurements[j].Timestamp()
	})
}
