package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
)

// out is where commands report progress and results.
var out = newPrinter(os.Stdout, false)

// printer writes colored, per-device status lines. Devices run
// concurrently, so every line is written under mu.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	profile termenv.Profile
}

// newPrinter colors output for w's terminal. NO_COLOR and noANSI force
// plain text.
func newPrinter(w io.Writer, noANSI bool) *printer {
	profile := termenv.NewOutput(w).ColorProfile()
	if noANSI || os.Getenv("NO_COLOR") != "" {
		profile = termenv.Ascii
	}
	return &printer{w: w, profile: profile}
}

func (p *printer) paint(s, color string) string {
	return p.profile.String(s).Foreground(p.profile.Color(color)).String()
}

func (p *printer) line(serial, mark, color, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if serial == "" {
		fmt.Fprintf(p.w, "  %s %s\n", p.paint(mark, color), msg)
		return
	}
	fmt.Fprintf(p.w, "  %s %s %s\n", p.paint(mark, color), p.paint("["+serial+"]", "8"), msg)
}

func (p *printer) step(serial, msg string) {
	p.line(serial, "⏳", "6", msg)
}

func (p *printer) success(serial, msg string) {
	p.line(serial, "✓", "2", msg)
}

func (p *printer) failure(serial, msg string) {
	p.line(serial, "✗", "1", msg)
}

func (p *printer) value(serial, label, value string) {
	p.line(serial, "•", "4", label+": "+p.profile.String(value).Bold().String())
}

// raw writes s unadorned, for output meant to be piped.
func (p *printer) raw(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}
