// Package classify maps period aggregates to ordinal risk labels using
// fixed, named thresholds. Classification is a pure function of one
// PeriodSummary and one Thresholds value; it never consults the externally
// supplied hazard labels, which live in a separate column family.
package classify

import (
	"github.com/hazardscope/api/internal/models"
)

// Thresholds are the fixed classification constants, in the units of the
// aggregates they test: mm/yr for precipitation, °C for mean temperature.
// They are plain data so deployments can tune them without touching the
// aggregation logic.
type Thresholds struct {
	// Drought: annual precipitation below a bound raises the label.
	DroughtExtremeBelowMM float64
	DroughtHighBelowMM    float64
	DroughtMediumBelowMM  float64

	// Flood: annual precipitation at or above a bound raises the label.
	FloodMediumFromMM  float64
	FloodHighFromMM    float64
	FloodExtremeFromMM float64

	// Wildfire proxy: a joint hot-and-dry condition. Each tier requires
	// mean temperature at or above the tier's temperature and annual
	// precipitation below the tier's dryness bound.
	WildfireMediumTempC    float64
	WildfireMediumBelowMM  float64
	WildfireHighTempC      float64
	WildfireHighBelowMM    float64
	WildfireExtremeTempC   float64
	WildfireExtremeBelowMM float64
}

// DefaultThresholds returns the stock constants. Reference points: 650
// mm/yr classifies as Medium drought, 580 mm/yr as High.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DroughtExtremeBelowMM: 300,
		DroughtHighBelowMM:    600,
		DroughtMediumBelowMM:  800,

		FloodMediumFromMM:  1200,
		FloodHighFromMM:    1800,
		FloodExtremeFromMM: 2500,

		WildfireMediumTempC:    18,
		WildfireMediumBelowMM:  900,
		WildfireHighTempC:      22,
		WildfireHighBelowMM:    700,
		WildfireExtremeTempC:   28,
		WildfireExtremeBelowMM: 400,
	}
}

// Labels are the locally computed risk labels for one summary, one per
// hazard dimension.
type Labels struct {
	Drought  models.RiskLabel
	Flood    models.RiskLabel
	Wildfire models.RiskLabel
}

// Classify derives the labels for a summary. Dimensions whose inputs are
// absent come back as not available. Partial, non-annualized precipitation
// sums are not comparable to the per-year thresholds, so precipitation-based
// dimensions are also not available for partial windows.
func Classify(summary models.PeriodSummary, t Thresholds) Labels {
	labels := Labels{
		Drought:  models.RiskNotAvailable,
		Flood:    models.RiskNotAvailable,
		Wildfire: models.RiskNotAvailable,
	}

	precipComparable := summary.Precipitation.Valid && summary.PrecipAnnualized
	if !precipComparable {
		return labels
	}
	precip := summary.Precipitation.Float

	labels.Drought = droughtLabel(precip, t)
	labels.Flood = floodLabel(precip, t)

	if summary.MeanTemperature.Valid {
		labels.Wildfire = wildfireLabel(summary.MeanTemperature.Float, precip, t)
	}

	return labels
}

func droughtLabel(precip float64, t Thresholds) models.RiskLabel {
	switch {
	case precip < t.DroughtExtremeBelowMM:
		return models.RiskExtreme
	case precip < t.DroughtHighBelowMM:
		return models.RiskHigh
	case precip < t.DroughtMediumBelowMM:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func floodLabel(precip float64, t Thresholds) models.RiskLabel {
	switch {
	case precip >= t.FloodExtremeFromMM:
		return models.RiskExtreme
	case precip >= t.FloodHighFromMM:
		return models.RiskHigh
	case precip >= t.FloodMediumFromMM:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func wildfireLabel(temp, precip float64, t Thresholds) models.RiskLabel {
	switch {
	case temp >= t.WildfireExtremeTempC && precip < t.WildfireExtremeBelowMM:
		return models.RiskExtreme
	case temp >= t.WildfireHighTempC && precip < t.WildfireHighBelowMM:
		return models.RiskHigh
	case temp >= t.WildfireMediumTempC && precip < t.WildfireMediumBelowMM:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
