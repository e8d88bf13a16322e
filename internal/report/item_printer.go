package report

import (
	"fmt"
	"io"

	"chachatb/internal/common"
	"chachatb/internal/tb"
)

// ItemPrinter writes report lines to a writer and optionally mirrors them to
// a component logger.
type ItemPrinter struct {
	writer     io.Writer
	errLog     common.ErrorLog
	muted      bool
	traceMuted bool
}

// NewItemPrinter constructs an ItemPrinter using the given io.Writer.
func NewItemPrinter(writer io.Writer) *ItemPrinter {
	return &ItemPrinter{
		writer: writer,
	}
}

// SetMessageLogger sets the optional logger lines are mirrored to.
func (p *ItemPrinter) SetMessageLogger(logger common.ErrorLog) {
	p.errLog = logger
}

// ItemPrintLine writes msg unless the printer is muted.
func (p *ItemPrinter) ItemPrintLine(msg string) {
	if p.muted {
		return
	}
	if p.writer != nil {
		fmt.Fprint(p.writer, msg)
	}
	if p.errLog != nil {
		p.errLog.LogMessage(tb.ErrSevDebug, msg)
	}
}

// ItemPrintf formats and writes one item.
func (p *ItemPrinter) ItemPrintf(format string, args ...any) {
	p.ItemPrintLine(fmt.Sprintf(format, args...))
}

// SetMute silences all output.
func (p *ItemPrinter) SetMute(mute bool) { p.muted = mute }

// MuteTrace silences the per-unit send/receive lines only.
func (p *ItemPrinter) MuteTrace(mute bool) { p.traceMuted = mute }

// TraceMuted returns whether per-unit lines are muted.
func (p *ItemPrinter) TraceMuted() bool { return p.traceMuted }
