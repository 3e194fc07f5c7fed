package hemmodels

import "time"

// Alert types raised by the threshold evaluator.
const (
	AlertHighConsumption = "HIGH_CONSUMPTION"
	AlertPowerFailure    = "POWER_FAILURE"
	AlertHighTemperature = "HIGH_TEMPERATURE"
	AlertLowTemperature  = "LOW_TEMPERATURE"
)

// Alert severities.
const (
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// EnergyRecord is one stored sample from the power meter. Cost is derived
// from the cumulative energy counter at write time and never supplied by
// the device.
type EnergyRecord struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	DeviceID    string    `json:"device_id"`
	Power       float64   `json:"power"`
	Voltage     float64   `json:"voltage"`
	Current     float64   `json:"current"`
	EnergyTotal float64   `json:"energy_total"`
	Cost        float64   `json:"cost"`
}

// SensorRecord is one stored sample from the environmental sensor board.
type SensorRecord struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	DeviceID    string    `json:"device_id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	LightLevel  int       `json:"light_level"`
}

// PresenceRecord is one stored sample from the presence sensor.
type PresenceRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Presence  bool      `json:"presence"`
}

// ActuatorRecord is one stored snapshot of the actuator board. Window was
// added to the schema after the first deployment; rows written before the
// column existed read back as false.
type ActuatorRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Relay1    bool      `json:"relay1"`
	Relay2    bool      `json:"relay2"`
	Window    bool      `json:"window"`
	AutoMode  bool      `json:"auto_mode"`
}

// AlertRecord is a threshold alert. Resolution is a one-way transition.
type AlertRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	AlertType string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
}
