package jobs

import (
	"context"
	"fmt"
)

const HelloQuery = `{ hello }`

// Heartbeat records whether the GraphQL endpoint answers.
func Heartbeat(ctx context.Context, cfg Config) error {
	now := cfg.now()
	status := "OK"
	if _, err := cfg.client().Do(ctx, HelloQuery, nil); err != nil {
		status = "Error: " + err.Error()
	}
	return appendLines(cfg.LogPath, fmt.Sprintf("%s CRM is alive - GraphQL status: %s", now.Format(heartbeatLayout), status))
}
