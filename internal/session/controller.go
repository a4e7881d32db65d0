// Package session drives the trading loop: evaluate stop conditions, build a
// market snapshot, ask the oracle, validate, execute, record, journal every
// branch. One cycle at a time, fully sequential.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/ledger"
	"llm-crypto-agent/internal/logger"
	"llm-crypto-agent/internal/store"
	"llm-crypto-agent/internal/trace"
	"llm-crypto-agent/internal/types"
)

// CycleOutcome is where one pass through the state machine ended up.
type CycleOutcome string

const (
	OutcomeTerminated CycleOutcome = "terminated"
	OutcomeHeld       CycleOutcome = "held"
	OutcomeSkipped    CycleOutcome = "skipped"
	OutcomeRejected   CycleOutcome = "rejected"
	OutcomeTraded     CycleOutcome = "traded"
)

// Recorder persists cycle outcomes and trades outside the journal. Optional;
// persistence failures are logged and never break a cycle.
type Recorder interface {
	RecordCycle(ctx context.Context, sessionID string, outcome, detail string) error
	RecordTrade(ctx context.Context, sessionID string, rec types.TradeRecord) error
}

// NewsDigester supplies an optional headline digest for the oracle payload.
type NewsDigester interface {
	Digest(ctx context.Context, assets []string) string
}

type Controller struct {
	cfg         *store.Config
	constraints types.ConstraintSet
	exchange    interfaces.Exchange
	oracle      interfaces.Oracle
	journal     interfaces.Journal
	ledger      *ledger.Ledger

	snapshots snapshotBuilder
	validator validator
	executor  executor

	// Optional collaborators, set before Run.
	History Recorder
	News    NewsDigester

	sessionID string
	start     time.Time
	stopped   string

	// Injection points for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

var _ interfaces.Session = (*Controller)(nil)

func New(cfg *store.Config, exchange interfaces.Exchange, oracle interfaces.Oracle, journal interfaces.Journal) *Controller {
	constraints := cfg.ConstraintSet()
	return &Controller{
		cfg:         cfg,
		constraints: constraints,
		exchange:    exchange,
		oracle:      oracle,
		journal:     journal,
		ledger:      ledger.New(),
		snapshots:   snapshotBuilder{constraints: constraints},
		validator:   validator{constraints: constraints, exchange: exchange},
		executor:    newExecutor(exchange),
		sessionID:   uuid.NewString(),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// SessionID identifies this run in the journal header and the history store.
func (c *Controller) SessionID() string { return c.sessionID }

// Ledger exposes the session tally for the end-of-session summary.
func (c *Controller) Ledger() *ledger.Ledger { return c.ledger }

// StartedAt is the session start time, zero before Run.
func (c *Controller) StartedAt() time.Time { return c.start }

// StopReason is the stop condition that ended the session, empty while
// running or after an abort.
func (c *Controller) StopReason() string { return c.stopped }

// Run executes the session until a stop condition is met or a cycle-fatal
// error aborts it. Every abnormal outcome is journaled before returning.
func (c *Controller) Run(ctx context.Context) error {
	c.start = c.now()

	if err := c.writeHeader(); err != nil {
		return fmt.Errorf("initialize journal: %w", err)
	}
	logger.Info(ctx, "Session started",
		"session_id", c.sessionID,
		"max_runtime", c.constraints.MaxRuntime.String(),
		"profit_target_usdc", c.constraints.ProfitTargetUSDC,
		"max_transactions", c.constraints.MaxTransactions,
	)

	for {
		outcome, err := c.Step(ctx)
		if err != nil {
			_ = c.journal.AppendEntry("Session Aborted", err.Error())
			logger.ErrorWithErr(ctx, "Session aborted", err, "session_id", c.sessionID)
			return err
		}

		switch outcome {
		case OutcomeTerminated:
			return nil
		case OutcomeTraded:
			// Stop conditions are re-checked the instant a trade lands,
			// before any polling delay.
			if reason, ok := c.currentStopReason(); ok {
				if err := c.terminate(ctx, reason); err != nil {
					return err
				}
				return nil
			}
			c.sleep(ctx, c.cfg.PollInterval())
		default:
			c.sleep(ctx, c.cfg.PollInterval())
		}

		if err := ctx.Err(); err != nil {
			_ = c.journal.AppendEntry("Session Interrupted", "Shutdown requested.")
			logger.Warn(ctx, "Session interrupted", "session_id", c.sessionID)
			return err
		}
	}
}

// sleepCtx waits for the interval or for cancellation, whichever is first.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Step runs one pass of the state machine: Evaluating, then at most one full
// cycle. Exposed so tests can drive transitions without the loop.
func (c *Controller) Step(ctx context.Context) (CycleOutcome, error) {
	ctx, span := trace.StartSpan(ctx, "session.Step")
	defer span.End()

	// Evaluating
	if reason, ok := c.currentStopReason(); ok {
		if err := c.terminate(ctx, reason); err != nil {
			return OutcomeTerminated, err
		}
		return OutcomeTerminated, nil
	}

	// Snapshotting
	accounts, err := c.exchange.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("build market snapshot: %w", err)
	}
	snapshot := c.snapshots.Build(accounts)
	payload := c.constraintsPayload(ctx, snapshot)

	// Deciding
	journalText, err := c.journal.Contents()
	if err != nil {
		return "", fmt.Errorf("read journal: %w", err)
	}
	decision, err := c.oracle.Decide(ctx, interfaces.Prompt{
		JournalText: journalText,
		Snapshot:    snapshot,
		Constraints: payload,
	})
	if err != nil {
		return "", fmt.Errorf("oracle decision: %w", err)
	}

	logger.Decision(ctx, decision.ProductID, decision.Action, decision.Rationale)
	if err := c.journal.AppendDecision(decision); err != nil {
		return "", fmt.Errorf("journal decision: %w", err)
	}

	// Holding: hold bypasses validation entirely.
	if decision.Action == types.ActionHold {
		c.recordCycle(ctx, OutcomeHeld, decision.Rationale)
		return OutcomeHeld, nil
	}

	// Skipping: a trade without a product cannot be acted on.
	if decision.ProductID == "" {
		const reason = "Oracle suggested a trade without specifying a product. Action ignored."
		if err := c.journal.AppendEntry("Decision Skipped", reason); err != nil {
			return "", err
		}
		c.recordCycle(ctx, OutcomeSkipped, reason)
		return OutcomeSkipped, nil
	}

	productID := types.NormalizeProductID(decision.ProductID)

	// Validating
	rejection, err := c.validator.Validate(ctx, decision, productID, c.ledger.TransactionCount())
	if err != nil {
		return "", fmt.Errorf("validate decision: %w", err)
	}
	if rejection != nil {
		logger.Rejection(ctx, productID, decision.Action, rejection.Reason)
		if err := c.journal.AppendEntry("Decision Rejected", rejection.Reason); err != nil {
			return "", err
		}
		c.recordCycle(ctx, OutcomeRejected, rejection.Reason)
		return OutcomeRejected, nil
	}

	// Executing
	record, err := c.executor.Execute(ctx, decision, productID)
	if err != nil {
		return "", fmt.Errorf("execute trade: %w", err)
	}

	// Recording
	c.ledger.RegisterTrade(record)
	logger.Trade(ctx, record.ProductID, record.Action, record.AmountUSDC, record.OrderID,
		"net_profit_usdc", c.ledger.NetProfit(),
		"transaction_count", c.ledger.TransactionCount(),
	)
	if err := c.journal.AppendTransaction(record); err != nil {
		return "", fmt.Errorf("journal transaction: %w", err)
	}
	c.recordTrade(ctx, record)
	c.recordCycle(ctx, OutcomeTraded, record.OrderID)
	return OutcomeTraded, nil
}

func (c *Controller) currentStopReason() (string, bool) {
	return stopReason(c.constraints, c.now().Sub(c.start), c.ledger.TransactionCount(), c.ledger.NetProfit())
}

func (c *Controller) terminate(ctx context.Context, reason string) error {
	c.stopped = reason
	logger.Info(ctx, "Session complete", "session_id", c.sessionID, "reason", reason,
		"net_profit_usdc", c.ledger.NetProfit(), "transaction_count", c.ledger.TransactionCount())
	c.recordCycle(ctx, OutcomeTerminated, reason)
	return c.journal.AppendEntry("Session Complete", reason)
}

func (c *Controller) constraintsPayload(ctx context.Context, snapshot types.MarketSnapshot) types.ConstraintsPayload {
	payload := types.ConstraintsPayload{
		MaxRuntimeHours:       c.constraints.MaxRuntime.Hours(),
		ProfitTargetUSDC:      c.constraints.ProfitTargetUSDC,
		MaxTransactions:       c.constraints.MaxTransactions,
		MaxPurchaseUSDC:       c.constraints.MaxPurchaseUSDC,
		ForbiddenAssets:       c.constraints.ForbiddenAssets(),
		RemainingTransactions: c.constraints.MaxTransactions - c.ledger.TransactionCount(),
		CurrentProfitUSDC:     c.ledger.NetProfit(),
	}
	if c.News != nil {
		assets := make([]string, 0, len(snapshot.CandidateProducts))
		for _, p := range snapshot.CandidateProducts {
			assets = append(assets, types.BaseAsset(p))
		}
		payload.NewsDigest = c.News.Digest(ctx, assets)
	}
	return payload
}

func (c *Controller) writeHeader() error {
	metadata := map[string]any{
		"session_id":         c.sessionID,
		"start_time":         c.start.UTC().Format(time.RFC3339),
		"max_runtime":        c.constraints.MaxRuntime.String(),
		"profit_target_usdc": c.constraints.ProfitTargetUSDC,
		"max_transactions":   c.constraints.MaxTransactions,
		"max_purchase_usdc":  c.constraints.MaxPurchaseUSDC,
		"forbidden_assets":   c.constraints.ForbiddenAssets(),
	}
	if err := c.journal.LogHeader(metadata); err != nil {
		return err
	}
	b, _ := json.MarshalIndent(metadata, "", "  ")
	return c.journal.AppendEntry("Session Started", string(b))
}

func (c *Controller) recordCycle(ctx context.Context, outcome CycleOutcome, detail string) {
	if c.History == nil {
		return
	}
	if err := c.History.RecordCycle(ctx, c.sessionID, string(outcome), detail); err != nil {
		logger.Warn(ctx, "Failed to persist cycle", "error", err, "outcome", outcome)
	}
}

func (c *Controller) recordTrade(ctx context.Context, rec types.TradeRecord) {
	if c.History == nil {
		return
	}
	if err := c.History.RecordTrade(ctx, c.sessionID, rec); err != nil {
		logger.Warn(ctx, "Failed to persist trade", "error", err, "order_id", rec.OrderID)
	}
}
