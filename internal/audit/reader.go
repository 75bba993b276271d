package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// ReadEscalations returns the escalation records in append order. This is
// a workflow-side convenience for review tooling; the decision engine
// itself never reads the logs back. A missing log means no escalations.
func ReadEscalations(dir string) ([]model.EscalationEntry, error) {
	path := filepath.Join(dir, escalationLogName)

	f, err := os.Open(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open escalation log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []model.EscalationEntry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var entry model.EscalationEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// A torn write should not hide the rest of the log.
			slog.Warn("Skipping unreadable escalation record", "line", line, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read escalation log: %w", err)
	}

	return entries, nil
}
