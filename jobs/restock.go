package jobs

import (
	"context"
	"fmt"
)

const RestockMutation = `mutation {
	updateLowStockProducts {
		updatedProducts { id name stock }
		message
	}
}`

// Restock runs the low-stock mutation and lists every product it topped up.
func Restock(ctx context.Context, cfg Config) error {
	ts := cfg.now().Format(timestampLayout)
	data, err := cfg.client().Do(ctx, RestockMutation, nil)
	if err != nil {
		return appendLines(cfg.LogPath, fmt.Sprintf("%s - ERROR running update_low_stock: %v", ts, err))
	}
	res := data.Get("updateLowStockProducts")
	lines := []string{fmt.Sprintf("%s - %s", ts, res.Get("message").String())}
	for _, p := range res.Get("updatedProducts").Array() {
		lines = append(lines, fmt.Sprintf("    Product: %s - Stock: %d", p.Get("name").String(), p.Get("stock").Int()))
	}
	return appendLines(cfg.LogPath, lines...)
}
