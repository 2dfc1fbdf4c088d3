package jobs

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

const ReportQuery = `query {
	customers { id }
	orders { id totalAmount }
}`

// Report logs how many customers and orders exist and the revenue of all orders.
func Report(ctx context.Context, cfg Config) error {
	ts := cfg.now().Format(timestampLayout)
	data, err := cfg.client().Do(ctx, ReportQuery, nil)
	if err != nil {
		return appendLines(cfg.LogPath, fmt.Sprintf("%s - ERROR: %v", ts, err))
	}
	orders := data.Get("orders").Array()
	revenue := decimal.Zero
	for _, o := range orders {
		amount, err := decimal.NewFromString(o.Get("totalAmount").String())
		if err != nil {
			return appendLines(cfg.LogPath, fmt.Sprintf("%s - ERROR: invalid totalAmount of order %s: %v", ts, o.Get("id").String(), err))
		}
		revenue = revenue.Add(amount)
	}
	return appendLines(cfg.LogPath, fmt.Sprintf("%s - Report: %d customers, %d orders, $%s revenue",
		ts, len(data.Get("customers").Array()), len(orders), revenue.StringFixed(2)))
}
