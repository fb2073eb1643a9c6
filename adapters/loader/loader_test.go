package loader

import (
	"strings"
	"testing"

	"nucoinc/internal/errors"
	"nucoinc/internal/logging"
)

func TestEffectiveArea(t *testing.T) {
	input := `# energy_min energy_max dec_min dec_max area_cm2
2.0 2.2 -90 0 1.5
2.0 2.2   0 90 3.25

2.2 2.4 -90 0 2.0
2.2 2.4   0 90 4.0
`
	bins, err := EffectiveArea(strings.NewReader(input))
	if err != nil {
		t.Fatalf("EffectiveArea: %v", err)
	}
	if len(bins) != 4 {
		t.Fatalf("parsed %d bins, want 4", len(bins))
	}
	if bins[1].AreaCm2 != 3.25 || bins[1].DecMinDeg != 0 {
		t.Errorf("bin 1 = %+v, wrong values", bins[1])
	}
}

func TestEffectiveArea_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "# only comments\n"},
		{"wrong column count", "2.0 2.2 -90 0\n"},
		{"non-numeric", "2.0 2.2 -90 zero 1.0\n"},
		{"inverted energy", "2.2 2.0 -90 0 1.0\n"},
		{"negative area", "2.0 2.2 -90 0 -1.0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EffectiveArea(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if code := errors.GetCode(err); code != errors.CodeBadTable {
				t.Errorf("error code = %q, want %q", code, errors.CodeBadTable)
			}
		})
	}
}

func TestEvents(t *testing.T) {
	input := `time_mjd,ra_deg,dec_deg,energy_log10_gev,sigma_deg
57982.5,180.0,45.0,3.2,0.5
58000.1,10.5,-30.0,4.1,1.2
`
	events, err := Events(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("parsed %d events, want 2", len(events))
	}
	if events[0].TimeMJD != 57982.5 || events[1].DecDeg != -30.0 {
		t.Errorf("unexpected event values: %+v", events)
	}
}

func TestEvents_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong header", "mjd,ra,dec,e,sigma\n57982.5,180,45,3.2,0.5\n"},
		{"ra out of range", "time_mjd,ra_deg,dec_deg,energy_log10_gev,sigma_deg\n57982.5,400,45,3.2,0.5\n"},
		{"dec out of range", "time_mjd,ra_deg,dec_deg,energy_log10_gev,sigma_deg\n57982.5,180,95,3.2,0.5\n"},
		{"non-numeric", "time_mjd,ra_deg,dec_deg,energy_log10_gev,sigma_deg\nx,180,45,3.2,0.5\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Events(strings.NewReader(tc.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	input := `time_gps,ra_deg,dec_deg,alt_deg,az_deg,distance_mpc,mass1_msun,mass2_msun,inclination_rad,far_gstlal_hz,far_pycbc_hz,far_mbta_hz,far_cwb_hz
1187008882.4,197.45,-23.38,35.0,120.0,40.0,1.46,1.27,2.55,1e-12,3e-12,0,0
1240215503.0,100.0,20.0,-10.0,300.0,430.0,31.0,29.0,0.5,0,0,2e-9,0
`
	entries, err := Catalog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("parsed %d entries, want 2", len(entries))
	}
	if entries[0].FARGstLALHz != 1e-12 || entries[1].FARMBTAHz != 2e-9 {
		t.Errorf("unexpected FAR values: %+v", entries)
	}
	if got := entries[0].TotalMassMsun(); got != 1.46+1.27 {
		t.Errorf("TotalMassMsun = %g, want %g", got, 1.46+1.27)
	}
}

func TestCatalog_RejectsNonPositiveDistance(t *testing.T) {
	input := `time_gps,ra_deg,dec_deg,alt_deg,az_deg,distance_mpc,mass1_msun,mass2_msun,inclination_rad,far_gstlal_hz,far_pycbc_hz,far_mbta_hz,far_cwb_hz
1187008882.4,197.45,-23.38,35.0,120.0,0,1.46,1.27,2.55,1e-12,3e-12,0,0
`
	if _, err := Catalog(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for zero distance")
	}
}

func TestFARList(t *testing.T) {
	input := `# rates in Hz
1e-12
2.5e-10

1e-8
`
	fars, err := FARList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FARList: %v", err)
	}
	if len(fars) != 3 {
		t.Fatalf("parsed %d rates, want 3", len(fars))
	}
	if fars[1] != 2.5e-10 {
		t.Errorf("fars[1] = %g, want 2.5e-10", fars[1])
	}
}

func TestFARList_RejectsNegative(t *testing.T) {
	if _, err := FARList(strings.NewReader("-1e-9\n")); err == nil {
		t.Fatal("expected error for negative rate")
	}
}

func TestLogSampleSummary(t *testing.T) {
	var buf strings.Builder
	log := logging.New(&buf, logging.LevelDebug)

	LogSampleSummary(log, "fars", []float64{1e-12, 1e-10, 1e-8})
	out := buf.String()
	for _, want := range []string{"fars", "n=3", "min=1e-12", "max=1e-08"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output %q missing %q", out, want)
		}
	}

	buf.Reset()
	LogSampleSummary(log, "empty", nil)
	if !strings.Contains(buf.String(), "empty sample") {
		t.Errorf("empty-sample output %q missing warning", buf.String())
	}
}
