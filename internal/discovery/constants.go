package discovery

// Allowed values mirrored from the Home Assistant MQTT documentation.
// They are maintained here, not imported from HA, so validation stays a
// plain string check.

// Component types with typed constructors. Any other HA component can be
// built with NewEntity directly.
const (
	ComponentSensor       = "sensor"
	ComponentBinarySensor = "binary_sensor"
	ComponentSwitch       = "switch"
	ComponentLight        = "light"
	ComponentButton       = "button"
	ComponentNumber       = "number"
	ComponentSelect       = "select"
	ComponentCover        = "cover"
)

var entityCategories = set("config", "diagnostic")

var availabilityModes = set("all", "any", "latest")

var sensorStateClasses = set("measurement", "total", "total_increasing")

var sensorDeviceClasses = set(
	"apparent_power", "aqi", "atmospheric_pressure", "battery",
	"carbon_dioxide", "carbon_monoxide", "current", "data_rate",
	"data_size", "date", "distance", "duration", "energy",
	"energy_storage", "enum", "frequency", "gas", "humidity",
	"illuminance", "irradiance", "moisture", "monetary", "nitrogen_dioxide",
	"nitrogen_monoxide", "nitrous_oxide", "ozone", "ph", "pm1", "pm10",
	"pm25", "power", "power_factor", "precipitation",
	"precipitation_intensity", "pressure", "reactive_power",
	"signal_strength", "sound_pressure", "speed", "sulphur_dioxide",
	"temperature", "timestamp", "volatile_organic_compounds", "voltage",
	"volume", "water", "weight", "wind_speed",
)

var binarySensorDeviceClasses = set(
	"battery", "battery_charging", "carbon_monoxide", "cold",
	"connectivity", "door", "garage_door", "gas", "heat", "light", "lock",
	"moisture", "moving", "occupancy", "opening", "plug", "power",
	"presence", "problem", "safety", "smoke", "sound", "tamper", "update",
	"vibration", "window",
)

func set(values ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}
