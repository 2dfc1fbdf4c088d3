package jobs

import (
	"context"
	"fmt"
	"time"
)

const RecentOrdersQuery = `query RecentOrders($startDate: DateTime!) {
	orders(orderDateGte: $startDate) {
		id
		customer { email }
	}
}`

// ReminderWindow is how far back Reminders looks for orders.
const ReminderWindow = 7 * 24 * time.Hour

// Reminders logs one line per order placed within ReminderWindow. Unlike the other jobs it
// reports failures on Out and leaves the log untouched.
func Reminders(ctx context.Context, cfg Config) error {
	now := cfg.now()
	vars := map[string]any{"startDate": now.Add(-ReminderWindow).Format(time.RFC3339)}
	data, err := cfg.client().Do(ctx, RecentOrdersQuery, vars)
	if err != nil {
		_, _ = fmt.Fprintf(cfg.out(), "Error: %v\n", err)
		return nil
	}
	var lines []string
	for _, o := range data.Get("orders").Array() {
		lines = append(lines, fmt.Sprintf("%s - Order ID: %s - Email: %s", now.Format(time.RFC3339), o.Get("id").String(), o.Get("customer.email").String()))
	}
	if err := appendLines(cfg.LogPath, lines...); err != nil {
		_, _ = fmt.Fprintf(cfg.out(), "Error: %v\n", err)
		return err
	}
	_, _ = fmt.Fprintln(cfg.out(), "Order reminders processed!")
	return nil
}
