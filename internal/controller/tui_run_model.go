package controller

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 80

// generationDelegate renders one history row.
type generationDelegate struct{}

func (d generationDelegate) Height() int  { return 1 }
func (d generationDelegate) Spacing() int { return 0 }
func (d generationDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d generationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	gen, ok := item.(generationItem)
	if !ok {
		return
	}

	numberStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true).Width(6).Align(lipgloss.Right)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Width(12).Align(lipgloss.Right)
	genomeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	if index == m.Index() {
		numberStyle = numberStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
		valueStyle = valueStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	}

	s := gen.report.Summary
	line := fmt.Sprintf("%s  %s  %s  %s",
		numberStyle.Render(fmt.Sprintf("%d", gen.report.Number)),
		valueStyle.Render(fmt.Sprintf("%g", s.Best)),
		valueStyle.Render(fmt.Sprintf("%.2f", s.Mean)),
		genomeStyle.Render(truncateToWidth(gen.report.Best, m.Width()-36)),
	)
	_, _ = fmt.Fprint(w, line)
}

// runModel shows a progress bar while the run advances and a browsable
// history of generations once it has finished.
type runModel struct {
	width       int
	height      int
	title       string
	generations int
	info        RunInfo
	progressBar progress.Model
	latest      GenerationReport
	history     list.Model
	finished    bool
	err         error
}

func newRunModel(cfg StartConfig) runModel {
	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	history := list.New([]list.Item{}, generationDelegate{}, defaultWidth, 10)
	history.SetShowPagination(false)
	history.SetShowFilter(false)
	history.SetFilteringEnabled(false)
	history.SetShowHelp(false)
	history.SetShowTitle(false)
	history.SetShowStatusBar(false)

	return runModel{
		title:       cfg.title,
		generations: cfg.generations,
		progressBar: prog,
		history:     history,
		width:       defaultWidth,
	}
}

func (m runModel) Init() tea.Cmd {
	return nil
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = max(min(msg.Width-4, 60), 10)
		m.history.SetSize(max(msg.Width-4, 20), max(msg.Height-10, 5))

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

		if m.finished {
			m.history, cmd = m.history.Update(msg)
		}

	case runInfoMsg:
		m.info = msg.info
		if m.generations == 0 {
			m.generations = msg.info.Generations
		}

	case generationMsg:
		m.latest = msg.report
		cmd = m.history.InsertItem(len(m.history.Items()), generationItem{report: msg.report})

	case summaryMsg:
		m.finished = true
		m.err = msg.err
		m.latest = msg.final
	}

	return m, cmd
}

func (m runModel) percent() float64 {
	if m.generations <= 0 {
		return 0
	}

	return min(float64(m.latest.Number)/float64(m.generations), 1)
}

func (m runModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)
	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(m.width)

	title := titleStyle.Render("🧬 " + m.title)

	header := summaryStyle.Render(fmt.Sprintf(
		"Problem: %s  •  Selector: %s  •  Population: %s  •  Workers: %s",
		accentStyle.Render(m.info.Problem),
		accentStyle.Render(m.info.Selector),
		accentStyle.Render(fmt.Sprintf("%d", m.info.Population)),
		accentStyle.Render(fmt.Sprintf("%d", m.info.Workers)),
	))

	s := m.latest.Summary
	stats := summaryStyle.Render(fmt.Sprintf(
		"Generation: %s / %s  •  Best: %s  •  Mean: %s  •  Optimum: %s",
		accentStyle.Render(fmt.Sprintf("%d", m.latest.Number)),
		accentStyle.Render(fmt.Sprintf("%d", m.generations)),
		accentStyle.Render(fmt.Sprintf("%g", s.Best)),
		accentStyle.Render(fmt.Sprintf("%.2f", s.Mean)),
		accentStyle.Render(fmt.Sprintf("%g", m.info.Optimum)),
	))

	if !m.finished {
		progressView := lipgloss.NewStyle().Padding(0, 2).Render(m.progressBar.ViewAs(m.percent()))

		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			header,
			stats,
			progressView,
			footerStyle.Render("Press q to quit"),
		)
	}

	status := accentStyle.Render("finished")
	if m.err != nil {
		status = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("failed: " + m.err.Error())
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 1).
		Render(m.history.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		header,
		stats,
		lipgloss.NewStyle().Padding(0, 2).Render(status),
		lipgloss.NewStyle().Padding(0, 2).Render("best genome: "+truncateToWidth(m.latest.Best, m.width-18)),
		box,
		footerStyle.Render("↑/k up • ↓/j down • q quit"),
	)
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	if width <= 1 {
		return "…"
	}

	runes := []rune(text)
	if len(runes) > width-1 {
		runes = runes[:width-1]
	}

	return string(runes) + "…"
}
