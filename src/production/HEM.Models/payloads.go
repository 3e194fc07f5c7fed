package hemmodels

// MQTT payload shapes for the telemetry topics. Fields are documented but
// not validated; anything the device omits decodes to its zero value.

type EnergyPayload struct {
	DeviceID    string  `json:"device_id"`
	Power       float64 `json:"power"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	EnergyTotal float64 `json:"energy_total"`
}

type EnvironmentPayload struct {
	DeviceID    string  `json:"device_id"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	LightLevel  int     `json:"light_level"`
}

type PresencePayload struct {
	DeviceID string `json:"device_id"`
	Presence bool   `json:"presence"`
}

type ActuatorPayload struct {
	DeviceID string `json:"device_id"`
	Relay1   bool   `json:"relay1"`
	Relay2   bool   `json:"relay2"`
	Window   bool   `json:"window"`
	AutoMode bool   `json:"auto_mode"`
}
