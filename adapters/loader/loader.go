// Package loader parses the raw detector and catalog files into the typed
// table bundle. Every row is validated at load time; malformed rows are
// rejected loudly instead of being coerced.
package loader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"nucoinc/domain/astro"
	"nucoinc/internal/errors"
	"nucoinc/internal/logging"
)

// EffectiveArea parses a whitespace-separated effective-area table with
// columns: energy min, energy max (log10 E/GeV), dec min, dec max (deg),
// effective area (cm^2). Lines starting with '#' are comments.
func EffectiveArea(r io.Reader) ([]astro.EffectiveAreaBin, error) {
	var bins []astro.EffectiveAreaBin
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 5 {
			return nil, errors.BadTable("effective-area line %d: want 5 columns, got %d", line, len(fields))
		}
		vals, err := parseFloats(fields)
		if err != nil {
			return nil, errors.Wrapf(errors.CodeBadTable, err, "effective-area line %d", line)
		}
		bin := astro.EffectiveAreaBin{
			EnergyMinLog10GeV: vals[0],
			EnergyMaxLog10GeV: vals[1],
			DecMinDeg:         vals[2],
			DecMaxDeg:         vals[3],
			AreaCm2:           vals[4],
		}
		if bin.EnergyMaxLog10GeV <= bin.EnergyMinLog10GeV || bin.DecMaxDeg <= bin.DecMinDeg || bin.AreaCm2 < 0 {
			return nil, errors.BadTable("effective-area line %d: inconsistent bin extent or negative area", line)
		}
		bins = append(bins, bin)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "read effective-area table", err)
	}
	if len(bins) == 0 {
		return nil, errors.BadTable("effective-area table is empty")
	}
	return bins, nil
}

// eventColumns is the required CSV header of an event table.
var eventColumns = []string{"time_mjd", "ra_deg", "dec_deg", "energy_log10_gev", "sigma_deg"}

// Events parses a historical detection sample from CSV.
func Events(r io.Reader) ([]astro.Event, error) {
	records, err := readCSV(r, eventColumns)
	if err != nil {
		return nil, err
	}
	events := make([]astro.Event, 0, len(records))
	for i, rec := range records {
		vals, err := parseFloats(rec)
		if err != nil {
			return nil, errors.Wrapf(errors.CodeBadTable, err, "event row %d", i+2)
		}
		ev := astro.Event{
			TimeMJD:        vals[0],
			RADeg:          vals[1],
			DecDeg:         vals[2],
			EnergyLog10GeV: vals[3],
			SigmaDeg:       vals[4],
		}
		if astro.UniformSkyDensity(ev.RADeg, ev.DecDeg) == 0 {
			return nil, errors.BadTable("event row %d: position outside valid sky ranges", i+2)
		}
		events = append(events, ev)
	}
	return events, nil
}

// catalogColumns is the required CSV header of the GW reference catalog.
var catalogColumns = []string{
	"time_gps", "ra_deg", "dec_deg", "alt_deg", "az_deg", "distance_mpc",
	"mass1_msun", "mass2_msun", "inclination_rad",
	"far_gstlal_hz", "far_pycbc_hz", "far_mbta_hz", "far_cwb_hz",
}

// Catalog parses the GW reference catalog from CSV.
func Catalog(r io.Reader) ([]astro.CatalogEntry, error) {
	records, err := readCSV(r, catalogColumns)
	if err != nil {
		return nil, err
	}
	entries := make([]astro.CatalogEntry, 0, len(records))
	for i, rec := range records {
		vals, err := parseFloats(rec)
		if err != nil {
			return nil, errors.Wrapf(errors.CodeBadTable, err, "catalog row %d", i+2)
		}
		e := astro.CatalogEntry{
			TimeGPS:        vals[0],
			RADeg:          vals[1],
			DecDeg:         vals[2],
			AltDeg:         vals[3],
			AzDeg:          vals[4],
			DistanceMpc:    vals[5],
			Mass1Msun:      vals[6],
			Mass2Msun:      vals[7],
			InclinationRad: vals[8],
			FARGstLALHz:    vals[9],
			FARPyCBCHz:     vals[10],
			FARMBTAHz:      vals[11],
			FARCWBHz:       vals[12],
		}
		if e.DistanceMpc <= 0 || e.Mass1Msun <= 0 || e.Mass2Msun <= 0 {
			return nil, errors.BadTable("catalog row %d: non-positive distance or mass", i+2)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FARList parses a flat list of FAR values (Hz), one per line, '#' comments.
func FARList(r io.Reader) ([]float64, error) {
	var fars []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.CodeBadTable, err, "far list line %d", line)
		}
		if v < 0 {
			return nil, errors.BadTable("far list line %d: negative rate", line)
		}
		fars = append(fars, v)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "read far list", err)
	}
	return fars, nil
}

// LogSampleSummary logs min/median/max of a loaded scalar sample, a cheap
// load-time sanity check against unit mix-ups in input files.
func LogSampleSummary(log *logging.Logger, name string, sample []float64) {
	if len(sample) == 0 {
		log.Warn("%s: empty sample", name)
		return
	}
	min, _ := stats.Min(sample)
	med, _ := stats.Median(sample)
	max, _ := stats.Max(sample)
	log.Info("%s: n=%d min=%g median=%g max=%g", name, len(sample), min, med, max)
}

func readCSV(r io.Reader, want []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "read csv header", err)
	}
	if len(header) != len(want) {
		return nil, errors.BadTable("csv header has %d columns, want %d (%s)",
			len(header), len(want), strings.Join(want, ","))
	}
	for i, col := range want {
		if strings.TrimSpace(header[i]) != col {
			return nil, errors.BadTable("csv column %d is %q, want %q", i+1, header[i], col)
		}
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "read csv rows", err)
	}
	return records, nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}
