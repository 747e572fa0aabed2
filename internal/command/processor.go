package command

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Terminal outcomes reported in result envelopes.
const (
	OutcomeSuccess          = "success"
	OutcomeValidationFailed = "validation_failed"
	OutcomeFatalError       = "fatal_error"
	OutcomeBusy             = "busy"
	OutcomeCooldown         = "cooldown"
	OutcomeUnknownCommand   = "unknown_command"
)

// defaultMaxHistory bounds the deduplication ledger when Options.MaxHistory
// is unset.
const defaultMaxHistory = 128

// Publisher is the transport collaborator. The processor publishes every
// envelope through it and treats failures as log-and-continue.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retain bool) error
}

// Logger is the logging collaborator. Satisfied by logging.Logger and
// *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Invocation is the context handed to an executor for one accepted command.
type Invocation struct {
	ID          string
	Command     string
	RequestedTS string
	Args        map[string]any
	Raw         map[string]any
	ReceivedTS  string
}

// ExecResult is the tagged outcome an executor reports. Extra fields are
// merged into the result envelope and may override the base fields.
type ExecResult struct {
	Outcome string
	Details string
	Extra   map[string]any
}

// Executor runs one command invocation. A returned error (or a panic) is
// converted to a fatal_error result carrying the error text; executors
// should reserve it for genuinely unexpected failures and report everything
// else as a tagged ExecResult.
type Executor func(inv Invocation) (ExecResult, error)

// CompletionFunc observes every emitted result. Used to feed metrics
// without coupling the core to a metrics backend.
type CompletionFunc func(command, outcome string, duration time.Duration)

// Options configures a Processor.
type Options struct {
	// AckTopic and ResultTopic receive the primary envelope streams.
	AckTopic    string
	ResultTopic string

	// LastAckTopic and LastResultTopic, when set, receive retained mirrors
	// of the latest envelope for late subscribers.
	LastAckTopic    string
	LastResultTopic string

	// MaxHistory bounds the deduplication ledger (default 128). Replay
	// protection only holds within this window.
	MaxHistory int

	// QoS applies to every envelope publish and is the default
	// qos_recommended for registered commands.
	QoS byte

	// RetainAck and RetainResult control retention of the primary streams.
	// Both default to false.
	RetainAck    bool
	RetainResult bool

	// ServiceName identifies this service in registry payloads.
	ServiceName string
}

// Processor is the command-processing engine.
//
// One internal mutex guards all shared mutable state: the deduplication
// ledger, the registry, the cooldown table, and the sequence counter. The
// execution permit is a second mutex acquired only with TryLock, so a
// contended worker fails fast to "busy" instead of queueing.
type Processor struct {
	pub  Publisher
	log  Logger
	opts Options

	mu          sync.Mutex
	recentIDs   []string
	recentSet   map[string]struct{}
	executors   map[string]Executor
	meta        map[string]*Entry
	lastSuccess map[string]time.Time
	seq         uint64

	autoRegistryTopic string

	onComplete CompletionFunc

	// execMu is the single process-wide execution permit.
	execMu sync.Mutex
}

// NewProcessor creates a Processor publishing through pub.
func NewProcessor(pub Publisher, log Logger, opts Options) *Processor {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = defaultMaxHistory
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "service"
	}
	return &Processor{
		pub:         pub,
		log:         log,
		opts:        opts,
		recentSet:   make(map[string]struct{}),
		executors:   make(map[string]Executor),
		meta:        make(map[string]*Entry),
		lastSuccess: make(map[string]time.Time),
	}
}

// SetOnComplete registers a callback invoked after every result emission.
// Must be set before the first command arrives.
func (p *Processor) SetOnComplete(fn CompletionFunc) {
	p.onComplete = fn
}

// process runs the synchronous ingress path: dedup, ack, registry and
// cooldown gates, then hands accepted commands to their own goroutine.
func (p *Processor) process(data map[string]any) {
	name := commandName(data)
	if name == "" {
		p.log.Warn("command with no name ignored")
		return
	}
	id := commandID(data)
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()

	p.mu.Lock()
	if _, dup := p.recentSet[id]; dup {
		p.mu.Unlock()
		p.log.Info("duplicate command ignored", "id", id, "command", name)
		return
	}
	p.recentIDs = append(p.recentIDs, id)
	p.recentSet[id] = struct{}{}
	if len(p.recentIDs) > p.opts.MaxHistory {
		old := p.recentIDs[0]
		p.recentIDs = p.recentIDs[1:]
		delete(p.recentSet, old)
	}
	p.seq++
	ackSeq := p.seq

	executor, registered := p.executors[name]
	var cooldown time.Duration
	var last time.Time
	var hasLast bool
	if entry, ok := p.meta[name]; ok {
		cooldown = entry.Cooldown
		last, hasLast = p.lastSuccess[name]
	}
	p.mu.Unlock()

	receivedTS := isoTime(now)
	p.emitAck(id, name, receivedTS, ackSeq)

	if !registered {
		p.emitResult(id, name, OutcomeUnknownCommand, "No executor registered", 0, nil)
		return
	}

	if cooldown > 0 && hasLast {
		if elapsed := now.Sub(last); elapsed < cooldown {
			retryAfter := int(math.Ceil((cooldown - elapsed).Seconds()))
			p.emitResult(id, name, OutcomeCooldown,
				fmt.Sprintf("cooldown_active retry_after_s=%d", retryAfter),
				0, map[string]any{"retry_after_s": retryAfter})
			return
		}
	}

	inv := Invocation{
		ID:          id,
		Command:     name,
		RequestedTS: stringField(data, "requested_ts"),
		Args:        mapField(data, "args"),
		Raw:         data,
		ReceivedTS:  receivedTS,
	}
	go p.runExecutor(executor, inv)
}

// runExecutor is the per-command worker. It acquires the execution permit
// without blocking; contention short-circuits to "busy" with zero duration.
func (p *Processor) runExecutor(executor Executor, inv Invocation) {
	start := time.Now()

	if !p.execMu.TryLock() {
		p.emitResult(inv.ID, inv.Command, OutcomeBusy, "Another command is executing", 0, nil)
		return
	}
	res := p.guardedInvoke(executor, inv)

	duration := time.Since(start)

	if res.Outcome == OutcomeSuccess {
		p.mu.Lock()
		// The cooldown window opens at executor start, so a slow command
		// cannot extend its own cooldown. Recorded before the result goes
		// out: a caller reacting to the result must already see the gate.
		p.lastSuccess[inv.Command] = start
		p.mu.Unlock()
	}

	p.emitResult(inv.ID, inv.Command, res.Outcome, res.Details, duration.Milliseconds(), res.Extra)

	if p.onComplete != nil {
		p.onComplete(inv.Command, res.Outcome, duration)
	}
}

// guardedInvoke runs the executor while holding the execution permit and
// releases it on every path, including panic.
func (p *Processor) guardedInvoke(executor Executor, inv Invocation) ExecResult {
	defer p.execMu.Unlock()

	res, err := invoke(executor, inv)
	if err != nil {
		p.log.Error("executor failure", "id", inv.ID, "command", inv.Command, "error", err)
		return ExecResult{Outcome: OutcomeFatalError, Details: err.Error()}
	}
	return res
}

// invoke calls the executor, converting panics to errors.
func invoke(executor Executor, inv Invocation) (res ExecResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return executor(inv)
}

// nextSeq returns the next value of the shared ack/result sequence counter.
func (p *Processor) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return p.seq
}

// isoTime formats a timestamp as ISO-8601 in UTC.
func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isoNow() string {
	return isoTime(time.Now())
}
