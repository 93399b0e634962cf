// Package console renders kiosk results on a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[1;37;42m"
	ansiRed   = "\x1b[1;37;41m"
	ansiWarn  = "\x1b[1;33m"
	bell      = "\a"
)

// Presenter implements ports.Presenter on a text stream.
type Presenter struct {
	out     io.Writer
	color   bool
	baseURL func() string
	prompt  string

	mu sync.Mutex
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithColor forces ANSI colors on or off.
func WithColor(on bool) Option {
	return func(p *Presenter) {
		p.color = on
	}
}

// WithPrompt sets the scan-ready prompt.
func WithPrompt(prompt string) Option {
	return func(p *Presenter) {
		p.prompt = prompt
	}
}

// NewPresenter writes to out. Colors are enabled when out is a terminal.
// baseURL resolves subject photo references.
func NewPresenter(out io.Writer, baseURL func() string, opts ...Option) *Presenter {
	p := &Presenter{
		out:     out,
		baseURL: baseURL,
		color:   isTerminal(out),
		prompt:  "Aponte para um QR Code ou digite o código manualmente",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result prints the verdict banner.
func (p *Presenter) Result(scan domain.ScanEvent, outcome domain.Outcome, display time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label, style := "NEGADO", ansiRed
	if outcome.Success {
		label, style = "LIBERADO", ansiGreen
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(p.paint(style, fmt.Sprintf("  %s  ", label)))
	b.WriteString("\n")
	if outcome.SubjectName != "" {
		fmt.Fprintf(&b, "%s\n", outcome.SubjectName)
	}
	if outcome.Message != "" {
		fmt.Fprintf(&b, "%s\n", outcome.Message)
	}
	if photo := outcome.PhotoURL(p.baseURL()); photo != "" {
		fmt.Fprintf(&b, "foto: %s\n", photo)
	}
	fmt.Fprintf(&b, "[%s] %s\n", scan.Channel, scan.Value)
	fmt.Fprintf(&b, "Fechar (%ds) - Enter para fechar\n", int(display.Round(time.Second)/time.Second))

	_, _ = io.WriteString(p.out, b.String())
}

// Cue rings the terminal bell once for a grant and three times for a deny.
func (p *Presenter) Cue(granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 3
	if granted {
		n = 1
	}
	_, _ = io.WriteString(p.out, strings.Repeat(bell, n))
}

// Notify prints a transient error.
func (p *Presenter) Notify(n ports.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := n.Title
	if title == "" {
		title = fmt.Sprintf("Erro (%s)", n.Channel)
	}
	_, _ = fmt.Fprintf(p.out, "%s %s\n", p.paint(ansiWarn, title+":"), n.Message)
}

// Ready prints the scan prompt.
func (p *Presenter) Ready() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "\n%s\n> ", p.prompt)
}

func (p *Presenter) paint(style, s string) string {
	if !p.color {
		return s
	}
	return style + s + ansiReset
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
