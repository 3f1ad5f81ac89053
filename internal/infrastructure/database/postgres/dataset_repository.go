package postgres

import (
	"churn-service/internal/domain/customer"
	"churn-service/internal/pkg/apperrors"
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
)

// DBPool is the subset of *pgxpool.Pool the repositories need.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// DatasetRepository reads the churn_customers table, a one-to-one import of
// Churn_Modelling.csv with snake_case column names and integer 0/1 flags.
type DatasetRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.HistoryRepository = (*DatasetRepository)(nil)

func NewDatasetRepository(db DBPool, logger *slog.Logger) *DatasetRepository {
	if db == nil {
		panic("DBPool cannot be nil for DatasetRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewDatasetRepository, using default stderr handler")
	}
	return &DatasetRepository{
		db:     db,
		logger: logger.With("component", "DatasetRepository"),
	}
}

const findAllHistoricalQuery = `
	SELECT row_number, customer_id, surname, credit_score, geography, gender, age, tenure,
	       balance, num_of_products, has_cr_card, is_active_member, estimated_salary, exited
	FROM churn_customers
	ORDER BY row_number`

func (r *DatasetRepository) FindAll(ctx context.Context) ([]customer.HistoricalRecord, error) {
	r.logger.DebugContext(ctx, "Loading historical dataset")

	rows, err := r.db.Query(ctx, findAllHistoricalQuery)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query historical dataset", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query churn_customers")
	}
	defer rows.Close()

	var records []customer.HistoricalRecord
	for rows.Next() {
		var (
			rec       customer.HistoricalRecord
			geography string
			exited    int
		)
		if err := rows.Scan(
			&rec.RowNumber,
			&rec.CustomerID,
			&rec.Surname,
			&rec.CreditScore,
			&geography,
			&rec.Gender,
			&rec.Age,
			&rec.Tenure,
			&rec.Balance,
			&rec.NumOfProducts,
			&rec.HasCrCard,
			&rec.IsActiveMember,
			&rec.EstimatedSalary,
			&exited,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan historical row", slog.Any("error", err))
			return nil, apperrors.WrapDatabaseError(err, "failed to scan churn_customers row")
		}
		rec.Geography = customer.Geography(geography)
		rec.Exited = exited == 1
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating historical rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to read churn_customers")
	}

	r.logger.InfoContext(ctx, "Loaded historical dataset", slog.Int("rows", len(records)))
	return records, nil
}
