package domain

import "math"

// scenarioProfile holds the per-scenario surge band and confidence base.
type scenarioProfile struct {
	surgeMin, surgeMax float64
	confidenceBase     float64
}

var scenarioProfiles = map[Scenario]scenarioProfile{
	ScenarioFestival:  {surgeMin: 15.0, surgeMax: 35.0, confidenceBase: 0.75},
	ScenarioWeekend:   {surgeMin: 2.0, surgeMax: 5.0, confidenceBase: 0.90},
	ScenarioEmergency: {surgeMin: 0.3, surgeMax: 0.8, confidenceBase: 0.65},
	ScenarioNormal:    {surgeMin: 1.0, surgeMax: 2.0, confidenceBase: 0.95},
}

// pickScenario maps a uniform draw onto Normal 60%, Festival 20%,
// Weekend 15%, Emergency 5%.
func pickScenario(r float64) Scenario {
	switch {
	case r > 0.95:
		return ScenarioEmergency
	case r > 0.80:
		return ScenarioWeekend
	case r > 0.60:
		return ScenarioFestival
	default:
		return ScenarioNormal
	}
}

// densityRisk is the general risk formula for a density draw and surge
// ratio. The live density is the draw scaled by surge, and risk scales the
// live density by surge again.
func densityRisk(density, surge float64) float64 {
	d := density * surge
	return math.Min(100, d*surge*5)
}

// festivalRisk keeps festivals in the elevated band regardless of density.
// It is deliberately not unified with densityRisk.
func festivalRisk(u float64) float64 {
	return math.Min(100, 50+u*50)
}

// jitterConfidence applies ±0.05 jitter, rounds to two decimals and clamps
// to [0, 1].
func jitterConfidence(base, u float64) float64 {
	c := base + u*0.1 - 0.05
	c = math.Round(c*100) / 100
	return math.Max(0, math.Min(1, c))
}

var roadDraws = []RoadCondition{RoadGood, RoadGood, RoadPotholes, RoadConstruction, RoadBlocked}

// roadCondition picks a road state and applies the risk overrides. High
// risk implies an obstructed road; the converse does not hold.
func roadCondition(risk int, u, override float64) RoadCondition {
	road := roadDraws[int(u*float64(len(roadDraws)))%len(roadDraws)]
	if risk > 80 {
		if override > 0.3 {
			return RoadBlocked
		}
		return RoadConstruction
	}
	if risk < 30 {
		return RoadGood
	}
	return road
}

func wasteIndex(crowd, capacity int) WasteIndex {
	switch {
	case float64(crowd) > float64(capacity)*1.5:
		return WasteHighAccumulation
	case crowd > capacity:
		return WasteModerate
	default:
		return WasteClean
	}
}

// electricityStatus is a single categorical draw: Outage 2%, Fluctuating
// 9.8%, Stable 88.2%.
func electricityStatus(u float64) ElectricityStatus {
	switch {
	case u >= 0.98:
		return ElectricityOutage
	case u >= 0.882:
		return ElectricityFluctuating
	default:
		return ElectricityStable
	}
}

func busFrequency(base int, road RoadCondition) int {
	if road.Obstructed() {
		return max(0, base-4)
	}
	return base
}

// sanitationPenalty is subtracted from the sanitation draw at heavy waste.
const sanitationPenalty = 30

func sanitationScore(base int, waste WasteIndex) int {
	if waste == WasteHighAccumulation {
		return base - sanitationPenalty
	}
	return base
}

func diseaseRisk(sanitation, risk int) DiseaseRisk {
	switch {
	case sanitation < 40 || risk > 90:
		return DiseaseHigh
	case sanitation < 70:
		return DiseaseModerate
	default:
		return DiseaseLow
	}
}

// airQuality adds construction dust and bus emissions to the base reading.
func airQuality(base float64, road RoadCondition, buses int) int {
	aqi := base
	if road == RoadConstruction {
		aqi += 50
	}
	if buses > 5 {
		aqi += 20
	}
	return int(math.Floor(aqi))
}
