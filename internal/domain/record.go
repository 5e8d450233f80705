package domain

import "time"

// SchemaVersion identifies the extended record layout carried by Snapshot.
// Version 1 was the minimal layout now exposed as CoreRecord.
const SchemaVersion = 2

// Scenario is the operating mode that conditions a location's draws.
type Scenario string

const (
	ScenarioNormal    Scenario = "Normal"
	ScenarioFestival  Scenario = "Festival"
	ScenarioWeekend   Scenario = "Weekend"
	ScenarioEmergency Scenario = "Emergency"

	// ScenarioAll is a filter value only; no record carries it.
	ScenarioAll Scenario = "All"
)

// Scenarios lists the record scenarios in display order.
var Scenarios = []Scenario{ScenarioNormal, ScenarioFestival, ScenarioWeekend, ScenarioEmergency}

// ParseScenario accepts a scenario name or "All". The empty string maps to All.
func ParseScenario(s string) (Scenario, bool) {
	switch Scenario(s) {
	case "", ScenarioAll:
		return ScenarioAll, true
	case ScenarioNormal, ScenarioFestival, ScenarioWeekend, ScenarioEmergency:
		return Scenario(s), true
	default:
		return "", false
	}
}

type RoadCondition string

const (
	RoadGood         RoadCondition = "Good"
	RoadPotholes     RoadCondition = "Potholes"
	RoadConstruction RoadCondition = "Construction"
	RoadBlocked      RoadCondition = "Blocked"
)

// Obstructed reports whether buses and pedestrians are diverted.
func (r RoadCondition) Obstructed() bool {
	return r == RoadBlocked || r == RoadConstruction
}

type WasteIndex string

const (
	WasteClean            WasteIndex = "Clean"
	WasteModerate         WasteIndex = "Moderate"
	WasteHighAccumulation WasteIndex = "High Accumulation"
)

type ElectricityStatus string

const (
	ElectricityStable      ElectricityStatus = "Stable"
	ElectricityFluctuating ElectricityStatus = "Fluctuating"
	ElectricityOutage      ElectricityStatus = "Outage"
)

type DiseaseRisk string

const (
	DiseaseLow      DiseaseRisk = "Low"
	DiseaseModerate DiseaseRisk = "Moderate"
	DiseaseHigh     DiseaseRisk = "High"
)

// LocationRecord is one location's synthetic readings for a generation cycle.
type LocationRecord struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Lat          float64   `json:"lat" yaml:"lat"`
	Lon          float64   `json:"lon" yaml:"lon"`
	BaseCapacity int       `json:"baseCapacity" yaml:"baseCapacity"`
	Scenario     Scenario  `json:"scenario" yaml:"scenario"`
	CurrentCrowd int       `json:"currentCrowd" yaml:"currentCrowd"`
	RiskScore    int       `json:"riskScore" yaml:"riskScore"`
	Confidence   float64   `json:"confidence" yaml:"confidence"`
	InflowRate   int       `json:"inflowRate" yaml:"inflowRate"`   // people per minute
	OutflowRate  int       `json:"outflowRate" yaml:"outflowRate"` // people per minute
	Temperature  int       `json:"temperature" yaml:"temperature"` // °C
	Humidity     int       `json:"humidity" yaml:"humidity"`       // %
	AQI          int       `json:"aqi" yaml:"aqi"`
	LastUpdated  time.Time `json:"lastUpdated" yaml:"lastUpdated"`

	// Infrastructure fields, correlated with crowd and risk.
	ElectricityStatus   ElectricityStatus `json:"electricityStatus" yaml:"electricityStatus"`
	StreetLightCoverage int               `json:"streetLightCoverage" yaml:"streetLightCoverage"` // % functional
	RoadCondition       RoadCondition     `json:"roadCondition" yaml:"roadCondition"`
	WasteIndex          WasteIndex        `json:"wasteIndex" yaml:"wasteIndex"`
	BusFrequency        int               `json:"busFrequency" yaml:"busFrequency"`       // buses per hour
	SanitationScore     int               `json:"sanitationScore" yaml:"sanitationScore"` // higher is better
	DiseaseRisk         DiseaseRisk       `json:"diseaseRisk" yaml:"diseaseRisk"`
}

// CoreRecord is the minimal record layout.
//
// Deprecated: consumers should read LocationRecord. CoreRecord remains for
// dashboards that predate the infrastructure fields.
type CoreRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	BaseCapacity int       `json:"baseCapacity"`
	Scenario     Scenario  `json:"scenario"`
	CurrentCrowd int       `json:"currentCrowd"`
	RiskScore    int       `json:"riskScore"`
	Confidence   float64   `json:"confidence"`
	InflowRate   int       `json:"inflowRate"`
	OutflowRate  int       `json:"outflowRate"`
	Temperature  int       `json:"temperature"`
	Humidity     int       `json:"humidity"`
	AQI          int       `json:"aqi"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Core projects the record onto the minimal layout.
func (r LocationRecord) Core() CoreRecord {
	return CoreRecord{
		ID:           r.ID,
		Name:         r.Name,
		Lat:          r.Lat,
		Lon:          r.Lon,
		BaseCapacity: r.BaseCapacity,
		Scenario:     r.Scenario,
		CurrentCrowd: r.CurrentCrowd,
		RiskScore:    r.RiskScore,
		Confidence:   r.Confidence,
		InflowRate:   r.InflowRate,
		OutflowRate:  r.OutflowRate,
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		AQI:          r.AQI,
		LastUpdated:  r.LastUpdated,
	}
}

// Snapshot is the complete output of one generation call. It is never
// updated in place; the next generation supersedes it.
type Snapshot struct {
	SchemaVersion int              `json:"schemaVersion" yaml:"schemaVersion"`
	GeneratedAt   time.Time        `json:"generatedAt" yaml:"generatedAt"`
	Records       []LocationRecord `json:"records" yaml:"records"`
}
