package enums

// WeatherCondition describes the forecast fed into the risk gate. Unknown
// values score zero rather than failing the evaluation.
type WeatherCondition string

const (
	WeatherClear  WeatherCondition = "clear"
	WeatherCloudy WeatherCondition = "cloudy"
	WeatherRainy  WeatherCondition = "rainy"
	WeatherStormy WeatherCondition = "stormy"
)

var validWeatherConditions = []WeatherCondition{
	WeatherClear,
	WeatherCloudy,
	WeatherRainy,
	WeatherStormy,
}

// String implements fmt.Stringer.
func (w WeatherCondition) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WeatherCondition.
func (w WeatherCondition) IsValid() bool {
	for _, candidate := range validWeatherConditions {
		if candidate == w {
			return true
		}
	}
	return false
}
