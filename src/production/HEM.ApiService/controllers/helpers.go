package controllers

import "math"

// CommandPublisher publishes an outbound control command on the
// transport. Implemented by the MQTT ingestor.
type CommandPublisher interface {
	PublishCommand(command string) error
}

// round rounds to a fixed number of decimal places at the API boundary.
// Energy and cost use 3 places, power uses 2; storage keeps full values.
func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
