package sampler

import (
	"sort"
	"time"

	"ipso-client-coap/ipso"
)

const (
	presenceThreshold  = 0.5
	proximityThreshold = 0.8
)

// Simulated temperature range of the delta-reporting temperature sensor.
const (
	sensorMinTemperature = -10
	sensorMaxTemperature = 40
)

// CatalogBindings returns a random-walk binding for every simulated object in
// cat. A zero seed seeds from the clock.
func CatalogBindings(cat *ipso.Catalog, seed int64) []Binding {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var bindings []Binding
	next := func(min, max float64) *RandomWalk {
		return NewRandomWalk(min, max, seed+int64(len(bindings)))
	}

	keys := make([]string, 0, len(cat.Sensors))
	for k := range cat.Sensors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := cat.Sensors[k]
		lo, hi := s.Range()
		if lo >= hi {
			lo, hi = 0, 100
		}
		bindings = append(bindings, Binding{Name: k, Source: next(lo, hi), Apply: s.Set})
	}

	if p := cat.Presence; p != nil {
		bindings = append(bindings, Binding{
			Name:   ipso.NamePresence,
			Source: next(0, 1),
			Apply:  func(v float64) error { return p.SetPresence(v >= presenceThreshold) },
		})
	}
	if p := cat.PresenceSensor; p != nil {
		bindings = append(bindings, Binding{
			Name:   ipso.NamePresenceSensor,
			Source: next(0, 1),
			Apply:  func(v float64) error { return p.SetState(0, v >= presenceThreshold) },
		})
	}
	if p := cat.ProximitySensor; p != nil {
		bindings = append(bindings, Binding{
			Name:   ipso.NameProximitySensor,
			Source: next(0, 1),
			Apply: func(v float64) error {
				if v < proximityThreshold {
					return nil
				}
				return p.Detect(0)
			},
		})
	}
	if s := cat.TemperatureSensor; s != nil {
		bindings = append(bindings, Binding{
			Name:   ipso.NameTemperatureSensor,
			Source: next(sensorMinTemperature, sensorMaxTemperature),
			Apply: func(v float64) error {
				_, err := s.CheckDelta(0, v)
				return err
			},
		})
	}
	return bindings
}
