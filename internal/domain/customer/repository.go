package customer

import "context"

// HistoryRepository serves the historical churn dataset the dashboard
// summarizes. Implementations return rows ordered by RowNumber.
type HistoryRepository interface {
	FindAll(ctx context.Context) ([]HistoricalRecord, error)
}
