package alerts

import (
	"context"
	"fmt"
	"time"

	logger "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Logger"
	hemmodels "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Models"
	interfaces "gitlab.com/maplesense1/hem.energy_server/src/production/HEM.Repository/Interfaces"
)

// DedupWindow is the rolling window within which an unresolved alert of a
// given type is never duplicated.
const DedupWindow = time.Hour

// Threshold constants. Comparisons are strict, so 2000 W, 30 C and 15 C
// themselves trigger nothing.
const (
	highPowerThreshold = 2000.0
	highTempThreshold  = 30.0
	lowTempThreshold   = 15.0
)

// Evaluator derives threshold alerts from newly stored records. It keeps
// no state of its own; suppression lives in the alert repository.
type Evaluator struct {
	alerts interfaces.AlertRepository
	logger *logger.Logger
}

func NewEvaluator(alerts interfaces.AlertRepository, logger *logger.Logger) *Evaluator {
	return &Evaluator{alerts: alerts, logger: logger}
}

// CheckEnergy runs the power rules. Both rules are evaluated
// independently, though zero power can never also exceed the high
// consumption threshold.
func (e *Evaluator) CheckEnergy(ctx context.Context, rec hemmodels.EnergyRecord) {
	if rec.Power > highPowerThreshold {
		e.raise(ctx, hemmodels.AlertHighConsumption, hemmodels.SeverityWarning,
			fmt.Sprintf("High power consumption: %.0f W", rec.Power))
	}
	if rec.Power == 0 {
		e.raise(ctx, hemmodels.AlertPowerFailure, hemmodels.SeverityCritical,
			"No power draw detected")
	}
}

// CheckEnvironment runs the temperature rules. The low check only runs
// when the high check did not fire.
func (e *Evaluator) CheckEnvironment(ctx context.Context, rec hemmodels.SensorRecord) {
	if rec.Temperature > highTempThreshold {
		e.raise(ctx, hemmodels.AlertHighTemperature, hemmodels.SeverityWarning,
			fmt.Sprintf("High temperature: %.1f C", rec.Temperature))
	} else if rec.Temperature < lowTempThreshold {
		e.raise(ctx, hemmodels.AlertLowTemperature, hemmodels.SeverityWarning,
			fmt.Sprintf("Low temperature: %.1f C", rec.Temperature))
	}
}

func (e *Evaluator) raise(ctx context.Context, alertType, severity, message string) {
	created, err := e.alerts.CreateIfAbsent(ctx, alertType, severity, message, DedupWindow)
	if err != nil {
		e.logger.Logger.Error().Err(err).Str("alert_type", alertType).Msg("Failed to store alert")
		return
	}
	if created {
		e.logger.Logger.Warn().Str("alert_type", alertType).Str("severity", severity).Msg(message)
	}
}
