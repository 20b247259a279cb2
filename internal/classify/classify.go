// Package classify maps sensor readings to risk tiers and advisory text.
//
// Every function is pure: the same reading always yields the same tier, so a
// consumer re-deriving status from raw values agrees with the engine as long
// as it uses the exported thresholds. All comparisons are strict.
package classify

// Tier is a risk level assigned to one monitored dimension or to a record as a whole.
type Tier string

const (
	Safe    Tier = "SAFE"
	Caution Tier = "CAUTION"
	Unsafe  Tier = "UNSAFE"
)

// Thresholds. A value must exceed the bound to reach the tier.
const (
	AQIUnsafeAbove          = 150
	AQICautionAbove         = 100
	TemperatureUnsafeAbove  = 40.0
	TemperatureCautionAbove = 35.0
	HumidityUnsafeAbove     = 80
	HumidityCautionAbove    = 60
)

// Assessment is the tier and advisory text for one dimension.
type Assessment struct {
	Tier     Tier   `json:"tier"`
	Advisory string `json:"advisory"`
}

// AQI classifies an Air Quality Index value.
func AQI(aqi int) Assessment {
	switch {
	case aqi > AQIUnsafeAbove:
		return Assessment{Tier: Unsafe, Advisory: "avoid outdoor activity"}
	case aqi > AQICautionAbove:
		return Assessment{Tier: Caution, Advisory: "sensitive groups cautious"}
	default:
		return Assessment{Tier: Safe, Advisory: "air quality safe"}
	}
}

// Temperature classifies an air temperature in degrees Celsius.
func Temperature(celsius float64) Assessment {
	switch {
	case celsius > TemperatureUnsafeAbove:
		return Assessment{Tier: Unsafe, Advisory: "heat risk, stay hydrated and avoid direct sun"}
	case celsius > TemperatureCautionAbove:
		return Assessment{Tier: Caution, Advisory: "warm, drink water regularly"}
	default:
		return Assessment{Tier: Safe, Advisory: "temperature comfortable"}
	}
}

// Humidity classifies a relative humidity percentage.
func Humidity(pct int) Assessment {
	switch {
	case pct > HumidityUnsafeAbove:
		return Assessment{Tier: Unsafe, Advisory: "high moisture, risk of mold and heat stress"}
	case pct > HumidityCautionAbove:
		return Assessment{Tier: Caution, Advisory: "elevated, monitor for discomfort"}
	default:
		return Assessment{Tier: Safe, Advisory: "humidity comfortable"}
	}
}

// Overall combines the three dimensions into the record-level status.
func Overall(aqi int, celsius float64, humidityPct int) Tier {
	return Worst(AQI(aqi).Tier, Temperature(celsius).Tier, Humidity(humidityPct).Tier)
}

// Worst returns the most severe tier. An empty list is Safe.
func Worst(tiers ...Tier) Tier {
	worst := Safe
	for _, tier := range tiers {
		if tier.severity() > worst.severity() {
			worst = tier
		}
	}
	return worst
}

func (t Tier) severity() int {
	switch t {
	case Unsafe:
		return 2
	case Caution:
		return 1
	default:
		return 0
	}
}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	return t == Safe || t == Caution || t == Unsafe
}

func (t Tier) String() string { return string(t) }
