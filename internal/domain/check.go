package domain

import (
	"errors"
	"fmt"
	"math"
)

// CheckSnapshot verifies a snapshot against the registry it was generated
// from and returns every violation found, joined.
func CheckSnapshot(reg Registry, snap Snapshot) error {
	var errs []error
	if snap.SchemaVersion != SchemaVersion {
		errs = append(errs, fmt.Errorf("schema version %d, want %d", snap.SchemaVersion, SchemaVersion))
	}
	if len(snap.Records) != len(reg) {
		errs = append(errs, fmt.Errorf("snapshot has %d records, registry has %d", len(snap.Records), len(reg)))
		return errors.Join(errs...)
	}
	for i, rec := range snap.Records {
		if err := checkRecord(i, reg[i], rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkRecord(i int, loc Location, rec LocationRecord) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: "+format, append([]any{rec.ID}, args...)...))
	}

	if rec.ID != RecordID(i) {
		fail("id does not match registry position %d", i)
	}
	if rec.Name != loc.Name || rec.BaseCapacity != loc.BaseCapacity || rec.Lat != loc.Lat || rec.Lon != loc.Lon {
		fail("location fields differ from registry entry %q", loc.Name)
	}
	if _, ok := scenarioProfiles[rec.Scenario]; !ok {
		fail("unknown scenario %q", rec.Scenario)
	}
	if rec.RiskScore < 0 || rec.RiskScore > 100 {
		fail("risk score %d outside [0,100]", rec.RiskScore)
	}
	if rec.CurrentCrowd < 0 {
		fail("negative crowd %d", rec.CurrentCrowd)
	}
	if rec.InflowRate < 0 || rec.OutflowRate < 0 {
		fail("negative flow rates in=%d out=%d", rec.InflowRate, rec.OutflowRate)
	}
	if float64(rec.OutflowRate) > float64(rec.InflowRate)*1.1 {
		fail("outflow %d exceeds 1.1x inflow %d", rec.OutflowRate, rec.InflowRate)
	}
	if math.IsNaN(rec.Confidence) || rec.Confidence < 0 || rec.Confidence > 1 {
		fail("confidence %g outside [0,1]", rec.Confidence)
	}
	if rec.RiskScore > 80 && !rec.RoadCondition.Obstructed() {
		fail("risk %d with unobstructed road %q", rec.RiskScore, rec.RoadCondition)
	}
	if rec.RiskScore < 30 && rec.RoadCondition != RoadGood {
		fail("risk %d with road %q, want Good", rec.RiskScore, rec.RoadCondition)
	}
	if want := wasteIndex(rec.CurrentCrowd, rec.BaseCapacity); rec.WasteIndex != want {
		fail("waste index %q, want %q for crowd %d", rec.WasteIndex, want, rec.CurrentCrowd)
	}
	if want := diseaseRisk(rec.SanitationScore, rec.RiskScore); rec.DiseaseRisk != want {
		fail("disease risk %q, want %q", rec.DiseaseRisk, want)
	}
	if rec.BusFrequency < 0 {
		fail("negative bus frequency %d", rec.BusFrequency)
	}
	switch rec.ElectricityStatus {
	case ElectricityStable, ElectricityFluctuating, ElectricityOutage:
	default:
		fail("unknown electricity status %q", rec.ElectricityStatus)
	}
	return errors.Join(errs...)
}
