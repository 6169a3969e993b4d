package models

// WeatherHour is one hourly forecast sample. DayOffset distinguishes
// today (0) from tomorrow (1) relative to the moment of fetch.
// Condition is the binary sun/cloud classifier used by the forecast
// strip and the coaching context.
type WeatherHour struct {
	Time      string `json:"time"`
	TempF     int    `json:"temp"`
	RainPct   int    `json:"rain"`
	Wind      string `json:"wind"`
	Condition string `json:"type"`
	DayOffset int    `json:"dayOffset"`
}

const (
	// ConditionSun marks clear or mostly clear hours
	ConditionSun = "sun"
	// ConditionCloud marks overcast, rain, snow and everything else
	ConditionCloud = "cloud"
)
