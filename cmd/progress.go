package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/services"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

// pageDoneMsg is sent for every page the assembler finishes
type pageDoneMsg services.AssembleProgress

// buildDoneMsg is sent once the build returns
type buildDoneMsg struct {
	resp *services.BuildResponse
	err  error
}

// buildModel renders a spinner and a progress bar while a build runs
type buildModel struct {
	spinner spinner.Model
	bar     progress.Model
	cancel  context.CancelFunc

	total   int
	current int
	source  string

	done bool
	resp *services.BuildResponse
	err  error
}

func newBuildModel(total int, cancel context.CancelFunc) buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.StyleAccent

	return buildModel{
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel:  cancel,
		total:   total,
	}
}

func (m buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// The build reports the cancellation through buildDoneMsg
			m.cancel()
		}
		return m, nil

	case pageDoneMsg:
		m.current = msg.Current
		m.total = msg.Total
		m.source = msg.Source
		return m, m.bar.SetPercent(m.percent())

	case buildDoneMsg:
		m.done = true
		m.resp = msg.resp
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		model, cmd := m.bar.Update(msg)
		m.bar = model.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m buildModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Creating PDF  [%d/%d]", m.spinner.View(), m.current, m.total))
	if m.source != "" {
		b.WriteString("  " + ui.FormatMuted(truncate(m.source, 40)))
	}
	b.WriteString("\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n")
	return b.String()
}

func (m buildModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.current) / float64(m.total)
}

// runBuildWithProgress runs the build while drawing its progress.
// Pressing ctrl+c cancels the build.
func runBuildWithProgress(ctx context.Context, svc *services.BuildService, images []domain.SourceImage) (*services.BuildResponse, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newBuildModel(len(images), cancel))

	progressChan := make(chan services.AssembleProgress)
	forwarded := make(chan struct{})

	go func() {
		defer close(forwarded)
		for pr := range progressChan {
			p.Send(pageDoneMsg(pr))
		}
	}()

	go func() {
		resp, err := svc.ExecuteWithProgress(ctx, services.BuildRequest{Images: images}, progressChan)
		<-forwarded
		p.Send(buildDoneMsg{resp: resp, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress display failed: %w", err)
	}

	m := final.(buildModel)
	return m.resp, m.err
}
