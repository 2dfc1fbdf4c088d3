// Package jobs holds the scheduled audit jobs. Each job posts one GraphQL document through a
// client built from its Config and appends what it saw to its own log file.
package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kcmvp/crm/gqlclient"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	heartbeatLayout = "02/01/2006-15:04:05"
)

// Config is built per invocation; jobs share nothing across runs.
type Config struct {
	Endpoint string
	Retries  int
	LogPath  string
	// Now defaults to time.Now.
	Now func() time.Time
	// Out receives console feedback, os.Stdout by default.
	Out           io.Writer
	ClientOptions []gqlclient.Option
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c Config) client() *gqlclient.Client {
	return gqlclient.New(c.Endpoint, c.Retries, c.ClientOptions...)
}

// Job runs once. Only failures to write the audit log are returned.
type Job func(ctx context.Context, cfg Config) error

// Names of the jobs, as used on the command line.
const (
	HeartbeatJob = "heartbeat"
	RestockJob   = "restock"
	ReportJob    = "report"
	RemindersJob = "reminders"
)

var Registry = map[string]Job{
	HeartbeatJob: Heartbeat,
	RestockJob:   Restock,
	ReportJob:    Report,
	RemindersJob: Reminders,
}

// appendLines appends lines, each terminated by a newline, to the file at path.
func appendLines(path string, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", path, err)
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write log %s: %w", path, err)
	}
	return f.Close()
}
