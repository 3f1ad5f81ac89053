// Package dataset reads the historical churn dataset from Churn_Modelling.csv.
package dataset

import (
	"churn-service/internal/domain/customer"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

var requiredColumns = []string{
	"RowNumber", "CustomerId", "Surname", "CreditScore", "Geography", "Gender", "Age",
	"Tenure", "Balance", "NumOfProducts", "HasCrCard", "IsActiveMember", "EstimatedSalary", "Exited",
}

var ErrMissingColumn = errors.New("dataset is missing a required column")

// CSVRepository loads the dataset from a CSV file on every FindAll call.
type CSVRepository struct {
	path   string
	logger *slog.Logger
}

var _ customer.HistoryRepository = (*CSVRepository)(nil)

func NewCSVRepository(path string, logger *slog.Logger) *CSVRepository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &CSVRepository{
		path:   path,
		logger: logger.With("component", "CSVRepository", "path", path),
	}
}

func (r *CSVRepository) FindAll(ctx context.Context) ([]customer.HistoricalRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := Read(ctx, f)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to read dataset", slog.Any("error", err))
		return nil, err
	}
	r.logger.InfoContext(ctx, "Loaded historical dataset", slog.Int("rows", len(records)))
	return records, nil
}

// Read parses CSV rows with a header line. Columns are matched by name, so
// extra columns and any column order are accepted.
func Read(ctx context.Context, src io.Reader) ([]customer.HistoricalRecord, error) {
	reader := csv.NewReader(src)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var records []customer.HistoricalRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset line %d: %w", line, err)
		}
		rec, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

type rowParser struct {
	row   []string
	index map[string]int
	err   error
}

func (p *rowParser) str(col string) string {
	return p.row[p.index[col]]
}

func (p *rowParser) int(col string) int {
	return int(p.int64(col))
}

func (p *rowParser) int64(col string) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(p.str(col), 10, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (p *rowParser) float(col string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.str(col), 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func parseRow(row []string, index map[string]int) (customer.HistoricalRecord, error) {
	p := &rowParser{row: row, index: index}
	rec := customer.HistoricalRecord{
		RowNumber:  p.int64("RowNumber"),
		CustomerID: p.int64("CustomerId"),
		Surname:    p.str("Surname"),
		Record: customer.Record{
			CreditScore:     p.int("CreditScore"),
			Geography:       customer.Geography(p.str("Geography")),
			Gender:          p.str("Gender"),
			Age:             p.int("Age"),
			Tenure:          p.int("Tenure"),
			Balance:         p.float("Balance"),
			NumOfProducts:   p.int("NumOfProducts"),
			HasCrCard:       p.int("HasCrCard"),
			IsActiveMember:  p.int("IsActiveMember"),
			EstimatedSalary: p.float("EstimatedSalary"),
		},
		Exited: p.int("Exited") == 1,
	}
	return rec, p.err
}
