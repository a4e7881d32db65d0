// Package journal writes the append-only markdown record of a session. Every
// decision, rejection, and trade lands here; the full contents are fed back
// to the oracle as context, so append order is the canonical audit order.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"llm-crypto-agent/internal/types"
)

type Journal struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New creates a journal with a timestamped filename inside dir, creating the
// directory when needed.
func New(dir, prefix, extension string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir %s: %w", dir, err)
	}
	name := fmt.Sprintf("%s_%s%s", prefix, time.Now().UTC().Format("20060102T150405Z"), extension)
	return &Journal{path: filepath.Join(dir, name), now: time.Now}, nil
}

// Open wraps an existing path. Used by tests and the summary command.
func Open(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// LogHeader writes the session header once. A second call on an existing
// file is ignored, keeping the operation idempotent.
func (j *Journal) LogHeader(metadata map[string]any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := os.Stat(j.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Trading Journal - %v\n\n", metadata["session_id"])

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		if k != "session_id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", headerLabel(k), metadata[k])
	}
	b.WriteString("\n")

	return os.WriteFile(j.path, []byte(b.String()), 0o644)
}

// AppendEntry appends one timestamped markdown section.
func (j *Journal) AppendEntry(heading, content string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	ts := j.now().UTC().Format(time.RFC3339)
	_, err = fmt.Fprintf(f, "## %s (%s UTC)\n\n%s\n\n", heading, ts, content)
	return err
}

// AppendDecision records the oracle's action and rationale, hold included.
func (j *Journal) AppendDecision(d types.Decision) error {
	content := fmt.Sprintf("- **Decision**: %s\n- **Rationale**: %s", d.Action, d.Rationale)
	return j.AppendEntry("Decision", content)
}

// AppendTransaction records one executed trade.
func (j *Journal) AppendTransaction(rec types.TradeRecord) error {
	lines := []string{
		fmt.Sprintf("- **order_id**: %s", rec.OrderID),
		fmt.Sprintf("- **status**: %s", rec.Status),
		fmt.Sprintf("- **product_id**: %s", rec.ProductID),
		fmt.Sprintf("- **action**: %s", rec.Action),
		fmt.Sprintf("- **amount_usdc**: %.2f", rec.AmountUSDC),
		fmt.Sprintf("- **filled_size**: %.8f", rec.FilledSize),
		fmt.Sprintf("- **avg_price**: %.8f", rec.AvgPrice),
		fmt.Sprintf("- **net_delta_usdc**: %.2f", rec.NetDeltaUSDC),
		fmt.Sprintf("- **timestamp**: %s", rec.Timestamp.UTC().Format(time.RFC3339)),
	}
	return j.AppendEntry("Transaction", strings.Join(lines, "\n"))
}

// Contents returns the full journal text, or "" before the first write.
func (j *Journal) Contents() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	b, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func headerLabel(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "usdc" {
			parts[i] = "(USDC)"
			continue
		}
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
