package api

import (
	"go.uber.org/zap"

	"github.com/estfeed/metering_sdk/common"
)

// payloadShape classifies the structure of an API response body. The Estfeed
// API returns the same logical data in several envelope variants, so every
// response is classified first and unwrapped per shape.
type payloadShape int

const (
	shapeEmpty payloadShape = iota
	shapeFlat
	shapeWrapped
	shapeUnrecognized
)

// measurementListKeys are the envelope keys under which a measurement list
// may appear, checked in order.
var measurementListKeys = []string{"meteringData", "data", "content", "measurements"}

// pointListKeys are the envelope keys under which a metering point list may
// appear, checked in order.
var pointListKeys = []string{"meteringPoints", "data", "content"}

func classifyPayload(raw any) payloadShape {
	switch v := raw.(type) {
	case nil:
		return shapeEmpty
	case []any:
		if len(v) == 0 {
			return shapeEmpty
		}
		return shapeFlat
	case map[string]any:
		if len(v) == 0 {
			return shapeEmpty
		}
		return shapeWrapped
	default:
		return shapeUnrecognized
	}
}

// unwrap resolves a payload to a flat list. A flat list passes through; a
// dict envelope is probed for the first matching key holding a non-empty
// list, falling through empty lists to the next key. Returns nil when
// nothing matches.
func unwrap(raw any, keys []string) []any {
	switch classifyPayload(raw) {
	case shapeFlat:
		return raw.([]any)
	case shapeWrapped:
		envelope := raw.(map[string]any)
		var matched bool
		for _, key := range keys {
			if list, ok := envelope[key].([]any); ok {
				if len(list) > 0 {
					return list
				}
				matched = true
			}
		}
		if matched {
			return []any{}
		}
	}
	return nil
}

// extractMeasurements resolves a metering-data payload to the measurement
// list for the requested EIC. Besides the flat and enveloped shapes, the API
// may return a list of per-EIC wrapper objects; a single wrapper is used
// as-is, while multiple wrappers are matched by EIC.
func extractMeasurements(raw any, eic string, logger *zap.Logger) []common.Measurement {
	if list := unwrap(raw, measurementListKeys); list != nil {
		if wrappers, ok := asEICWrappers(list); ok {
			return selectWrapper(wrappers, eic, logger)
		}
		return toMeasurements(list)
	}

	if classifyPayload(raw) != shapeEmpty {
		logger.Warn("unrecognized metering data payload shape", zap.String("eic", eic))
	}
	return nil
}

type eicWrapper struct {
	eic  string
	data []any
}

// asEICWrappers reports whether every element of list is a per-EIC wrapper
// object, and returns the parsed wrappers when so. A wrapper is recognized
// by its nested "measurements" list; its EIC label may be absent.
func asEICWrappers(list []any) ([]eicWrapper, bool) {
	if len(list) == 0 {
		return nil, false
	}
	wrappers := make([]eicWrapper, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		nested, ok := obj["measurements"].([]any)
		if !ok {
			return nil, false
		}
		wrappers = append(wrappers, eicWrapper{
			eic:  wrapperEIC(obj),
			data: nested,
		})
	}
	return wrappers, true
}

func wrapperEIC(obj map[string]any) string {
	for _, key := range []string{"meteringPointEic", "eic"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func selectWrapper(wrappers []eicWrapper, eic string, logger *zap.Logger) []common.Measurement {
	if len(wrappers) == 1 {
		return toMeasurements(wrappers[0].data)
	}
	for _, w := range wrappers {
		if w.eic == eic {
			return toMeasurements(w.data)
		}
	}

	returned := make([]string, 0, len(wrappers))
	for _, w := range wrappers {
		returned = append(returned, w.eic)
	}
	logger.Warn("no wrapper matched requested EIC",
		zap.String("requested_eic", eic),
		zap.Strings("returned_eics", returned),
	)
	return nil
}

func toMeasurements(list []any) []common.Measurement {
	out := make([]common.Measurement, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, common.Measurement(obj))
		}
	}
	return out
}
