package medicalrecord

import (
	"math"
	"strconv"

	"github.com/clinicadmin/clinic/pkg/formvalue"
)

// BuildVitalSigns assembles the vitals that were actually supplied. A
// numeric vital that does not parse to a finite, non-zero number counts as
// not supplied; a reading of exactly 0 is treated as "not taken" and
// dropped. It returns nil when nothing remains.
func BuildVitalSigns(in VitalsInput) VitalSigns {
	vs := VitalSigns{}
	if bp := in.BloodPressure.String(); bp != "" {
		vs["blood_pressure"] = bp
	}
	for key, raw := range map[string]formvalue.Text{
		"heart_rate":        in.HeartRate,
		"temperature":       in.Temperature,
		"respiratory_rate":  in.RespiratoryRate,
		"oxygen_saturation": in.OxygenSaturation,
		"weight":            in.Weight,
		"height":            in.Height,
	} {
		if v, ok := parseMeasurement(raw.String()); ok {
			vs[key] = v
		}
	}
	if len(vs) == 0 {
		return nil
	}
	return vs
}

func parseMeasurement(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseCodes splits a comma-separated list of diagnosis codes, trimming
// each and dropping empty segments.
func ParseCodes(raw string) []string {
	return formvalue.Split(raw)
}
