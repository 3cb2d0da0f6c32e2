package format

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/bshnet/bsh/pkg/engine"
)

var (
	hostStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // green
	portStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // cyan
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))   // red
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")) // gray
)

// ProgressPrinter writes one line per engine progress event.
type ProgressPrinter struct {
	f *Formatter
	w io.Writer
}

// Progress returns a sink printing to w, styled like f.
func (f *Formatter) Progress(w io.Writer) *ProgressPrinter {
	return &ProgressPrinter{f: f, w: w}
}

// OnEvent implements engine.ProgressSink.
func (p *ProgressPrinter) OnEvent(ev engine.ProgressEvent) {
	var line string
	switch {
	case ev.Phase == engine.PhaseDiscover && ev.Status == "alive":
		line = p.f.style(hostStyle, "[+] host "+ev.Host)
		if ev.Message != "" {
			line += " (" + ev.Message + ")"
		}
	case ev.Phase == engine.PhasePorts && ev.Port > 0:
		if ev.Status != "open" {
			return
		}
		line = p.f.style(portStyle, fmt.Sprintf("[+] port %d open", ev.Port))
		if ev.Message != "" {
			line += " (" + ev.Message + ")"
		}
	case ev.Status == "failed":
		line = p.f.style(failStyle, fmt.Sprintf("[!] %s %s", ev.Phase, ev.Status))
	default:
		line = fmt.Sprintf("[*] %s %s", ev.Phase, ev.Status)
		if ev.Host != "" {
			line += " " + ev.Host
		}
		if ev.Message != "" {
			line += " " + ev.Message
		}
		line = p.f.style(statusStyle, line)
	}
	_, _ = fmt.Fprintln(p.w, line)
}
