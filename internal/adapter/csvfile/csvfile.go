// Package csvfile reads and writes the flat CSV files exchanged between the
// fetch, summarize and score commands.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

const dateLayout = "2006-01-02"

// RankingColumns is the header of the ranked risk CSV.
var RankingColumns = []string{
	"nombre", "temp_media", "temp_maxima", "precipitacion_total", "altitud",
	"temp_score", "prec_score", "alt_score", "riesgo_total",
}

// Store reads and writes pipeline CSV files. Every write truncates the
// target and creates its parent directory.
type Store struct {
	logger *slog.Logger
}

// NewStore creates a CSV store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// WriteRaw writes raw AEMET records. The header is the union of record keys
// in first-seen order; keys missing from a record are written empty.
func (s *Store) WriteRaw(path string, records []domain.RawRecord) error {
	header := domain.Columns(records)
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(header))
		for i, col := range header {
			row[i], _ = r.Get(col)
		}
		rows = append(rows, row)
	}

	if err := s.write(path, header, rows); err != nil {
		return fmt.Errorf("write raw records: %w", err)
	}
	s.logger.Info("raw records written", "path", path, "rows", len(rows), "columns", len(header))
	return nil
}

// ReadRaw loads a yearly CSV back into raw records, every cell as text. NA
// cells come back as "NaN". A missing file yields an error wrapping
// fs.ErrNotExist.
func (s *Store) ReadRaw(path string) ([]domain.RawRecord, error) {
	_, records, err := s.ReadRawTable(path)
	return records, err
}

// ReadRawTable is ReadRaw that also returns the header, which is the only
// way to see the columns of a file with no data rows. An empty file yields
// no header and no records.
func (s *Store) ReadRawTable(path string) ([]string, []domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input csv: %w", err)
	}
	defer f.Close()

	// gota refuses a table without rows, so peek at the first two lines.
	peek := csv.NewReader(f)
	peek.FieldsPerRecord = -1
	header, err := peek.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read input csv %s: %w", path, err)
	}
	if _, err := peek.Read(); errors.Is(err, io.EOF) {
		s.logger.Debug("raw csv has no rows", "path", path, "columns", len(header))
		return header, nil, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("rewind input csv %s: %w", path, err)
	}

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("read input csv %s: %w", path, df.Err)
	}

	table := df.Records()
	header = table[0]

	records := make([]domain.RawRecord, 0, len(table)-1)
	for _, row := range table[1:] {
		rec := domain.RawRecord{Fields: make([]domain.Field, 0, len(header))}
		for i, col := range header {
			if i < len(row) {
				rec.Fields = append(rec.Fields, domain.Field{Key: col, Value: row[i]})
			}
		}
		records = append(records, rec)
	}

	s.logger.Debug("raw records loaded", "path", path, "rows", len(records), "columns", len(header))
	return header, records, nil
}

// ReadObservations loads a yearly CSV and maps each row to an Observation.
// Missing columns yield absent fields.
func (s *Store) ReadObservations(path string) ([]domain.Observation, error) {
	records, err := s.ReadRaw(path)
	if err != nil {
		return nil, err
	}

	obs := make([]domain.Observation, 0, len(records))
	for _, r := range records {
		row := make(map[string]string, len(r.Fields))
		var extra []domain.Field
		for _, f := range r.Fields {
			row[f.Key] = f.Value
			if !slices.Contains(domain.ObservationColumns, f.Key) {
				extra = append(extra, f)
			}
		}
		o := domain.ParseObservation(row)
		o.Extra = extra
		obs = append(obs, o)
	}
	return obs, nil
}

// WriteObservations writes cleaned observations with the fixed column set,
// followed by the union of their extra raw columns in first-seen order.
// Absent values are empty; floats use the shortest round-trip form; extra
// values are written as read, with NA cells left empty.
func (s *Store) WriteObservations(path string, obs []domain.Observation) error {
	var extraCols []string
	for _, o := range obs {
		for _, f := range o.Extra {
			if !slices.Contains(extraCols, f.Key) {
				extraCols = append(extraCols, f.Key)
			}
		}
	}
	header := append(slices.Clone(domain.ObservationColumns), extraCols...)

	rows := make([][]string, 0, len(obs))
	for _, o := range obs {
		row := []string{o.StationID, o.Name, o.Province, formatDate(o)}
		for _, col := range domain.ObservationColumns[4:] {
			v, _ := o.Value(col)
			row = append(row, formatFloat(v))
		}
		for _, col := range extraCols {
			row = append(row, extraValue(o.Extra, col))
		}
		rows = append(rows, row)
	}

	if err := s.write(path, header, rows); err != nil {
		return fmt.Errorf("write observations: %w", err)
	}
	s.logger.Info("observations written", "path", path, "rows", len(rows))
	return nil
}

// WriteRanking writes the scored stations in the order given.
func (s *Store) WriteRanking(path string, scores []domain.RiskScore) error {
	rows := make([][]string, 0, len(scores))
	for _, sc := range scores {
		rows = append(rows, []string{
			sc.Station,
			formatFloat(sc.TempMean),
			formatFloat(sc.TempMax),
			formatFloat(sc.PrecTotal),
			formatFloat(sc.Altitude),
			formatFloat(sc.TempScore),
			formatFloat(sc.PrecScore),
			formatFloat(sc.AltScore),
			formatFloat(sc.Total),
		})
	}

	if err := s.write(path, RankingColumns, rows); err != nil {
		return fmt.Errorf("write ranking: %w", err)
	}
	s.logger.Info("ranking written", "path", path, "stations", len(rows))
	return nil
}

func extraValue(fields []domain.Field, key string) string {
	for _, f := range fields {
		if f.Key == key {
			if f.Value == "NaN" {
				return ""
			}
			return f.Value
		}
	}
	return ""
}

func (s *Store) write(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := writeTable(f, header, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeTable renders header and rows through a string-typed DataFrame.
// dataframe refuses a header without rows, so that case goes straight to
// encoding/csv.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	records = append(records, rows...)

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return fmt.Errorf("build table: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(o domain.Observation) string {
	if o.Date.IsZero() {
		return ""
	}
	return o.Date.Format(dateLayout)
}
