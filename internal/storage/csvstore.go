package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"nychealth/internal"
)

const csvPrefix = "nyc_daily_health_"

var csvHeader = []string{
	"date", "country_id", "region_id", "subregion", "sex", "age_min", "age_max",
	"underlying_conditions", "confirmed_tot", "deaths_tot", "hospitalized_tot",
}

// CSVStore writes one file per scrape, named after the scrape date.
type CSVStore struct {
	dir         string
	compression Compression
}

func NewCSVStore(dir string, compression Compression) *CSVStore {
	return &CSVStore{dir: dir, compression: compression}
}

func (s *CSVStore) Path(date time.Time) string {
	name := csvPrefix + date.Format(internal.DateLayout) + ".csv" + s.compression.Extension()
	return filepath.Join(s.dir, name)
}

// Write stores records under the scrape date. With update set, records of
// the newest existing file come first and that file is replaced.
func (s *CSVStore) Write(date time.Time, records []internal.Record, update bool) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	path := s.Path(date)

	previous := ""
	if update {
		latest, ok, err := s.Latest()
		if err != nil {
			return "", err
		}
		if ok {
			current, err := ReadCSVFile(latest)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", latest, err)
			}
			records = append(current, records...)
			previous = latest
		}
	}

	if err := writeCSVFile(path, s.compression, records); err != nil {
		return "", err
	}
	if previous != "" && previous != path {
		if err := os.Remove(previous); err != nil {
			return "", err
		}
	}
	return path, nil
}

// Latest returns the newest output file in the store directory.
func (s *CSVStore) Latest() (string, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), csvPrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", false, nil
	}
	sort.Strings(names)
	return filepath.Join(s.dir, names[len(names)-1]), true, nil
}

// WriteCSVFile writes records to an arbitrary path, compressed according to
// its extension.
func WriteCSVFile(path string, records []internal.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeCSVFile(path, compressionFromPath(path), records)
}

func writeCSVFile(path string, compression Compression, records []internal.Record) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w, closeCompressed, err := newCompressedWriter(file, compression)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		k := r.Key()
		row := []string{
			k.Date, k.CountryID, k.RegionID, k.Subregion, k.Sex, k.AgeMin, k.AgeMax,
			k.UnderlyingConditions.String(), formatCount(r.ConfirmedTot), formatCount(r.DeathsTot), formatCount(r.HospitalizedTot),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return closeCompressed()
}

func ReadCSVFile(path string) ([]internal.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r, closeCompressed, err := newCompressedReader(file, compressionFromPath(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeCompressed() }()

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	for i, name := range header {
		index[name] = i
	}
	for _, name := range csvHeader {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %s", name)
		}
	}

	var out []internal.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string { return row[index[name]] }

		k := internal.Key{
			Date:      normalizeCSVDate(get("date")),
			CountryID: get("country_id"),
			RegionID:  get("region_id"),
			Subregion: get("subregion"),
			Sex:       get("sex"),
			AgeMin:    normalizeCSVAge(get("age_min")),
			AgeMax:    normalizeCSVAge(get("age_max")),
		}
		rec, err := recordFromColumns(k, get("underlying_conditions"))
		if err != nil {
			return nil, err
		}
		for name, field := range map[string]**int{
			"confirmed_tot":    &rec.ConfirmedTot,
			"deaths_tot":       &rec.DeathsTot,
			"hospitalized_tot": &rec.HospitalizedTot,
		} {
			if *field, err = parseCount(name, get(name)); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func formatCount(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// parseCount accepts "12" and the "12.0" written for float-typed columns.
func parseCount(column, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return nil, &ColumnError{Column: column, Value: value}
	}
	n := int(f)
	return &n, nil
}

// Older files carry timestamps such as "2020-04-14 00:00:00".
func normalizeCSVDate(value string) string {
	if len(value) > len(internal.DateLayout) {
		return value[:len(internal.DateLayout)]
	}
	return value
}

func normalizeCSVAge(value string) string {
	if strings.HasSuffix(value, ".0") {
		return strings.TrimSuffix(value, ".0")
	}
	return value
}
