package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	rowIndent   = 4  // spaces to indent habit rows
	nameWidth   = 28 // base width for habit name
	kindWidth   = 8  // width for habit kind
	statusWidth = 14 // width for status text
)

// 🎯 RowOperation represents a per-habit row for logging
type RowOperation struct {
	Habit     string // Habit display name
	Kind      string // Habit kind (health/vice)
	Checked   int    // Checked days in the row
	Days      int    // Days in the row's month
	Status    string // Operation status
	IsNew     bool   // Whether the habit was minted during the operation
	IsSkipped bool   // Whether the row was skipped
}

// 📦 SyncOperation represents a sheet-level operation for logging
type SyncOperation struct {
	Resource  string // Spreadsheet id or title
	Direction string // push/pull/merge/import/export
	Month     string // Month label (YYYY-MM)
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *SyncOperation
	rows      []RowOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatRow formats a habit row for display
func (l *Logger) formatRow(op RowOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var kindColor color.Attribute
	switch op.Kind {
	case "vice":
		kindColor = color.FgRed
	default:
		kindColor = color.FgCyan
	}

	progress := fmt.Sprintf("%d/%d", op.Checked, op.Days)

	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", rowIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Habit),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-7s", progress),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogRow logs a habit row
func (l *Logger) LogRow(ctx context.Context, op RowOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rows = append(l.rows, op)

	fmt.Fprintln(l.console, l.formatRow(op))

	l.zlog.Info().
		Str("habit", op.Habit).
		Str("kind", op.Kind).
		Int("checked", op.Checked).
		Int("days", op.Days).
		Str("status", op.Status).
		Bool("is_new", op.IsNew).
		Bool("is_skipped", op.IsSkipped).
		Msg("habit row")
}

// 📝 StartSyncOperation starts a new sheet-level operation
func (l *Logger) StartSyncOperation(ctx context.Context, op SyncOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.rows = nil

	fmt.Fprintf(l.console, "[%s %s]\n",
		op.Direction,
		color.New(color.FgCyan).Sprint(op.Resource))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Resource),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Month))

	l.zlog.Info().
		Str("resource", op.Resource).
		Str("direction", op.Direction).
		Str("month", op.Month).
		Msg("starting sync operation")
}

// 📝 EndSyncOperation ends the current sheet-level operation
func (l *Logger) EndSyncOperation(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("resource", l.currentOp.Resource).
		Int("rows", len(l.rows)).
		Msg("sync operation complete")

	l.currentOp = nil
	l.rows = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	brand := color.New(color.Bold, color.FgCyan).Sprint("habitgrid")
	fmt.Fprintf(l.console, "\n%s %s\n\n", brand, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
