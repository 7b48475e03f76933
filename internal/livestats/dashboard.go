package livestats

import (
	"fmt"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

// Dashboard renders a live terminal view of a Collector during a run. It is
// entirely optional: a run proceeds identically with or without it.
type Dashboard struct {
	collector *Collector
	label     string

	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	rpsGauge       *widgets.Gauge
	summaryPara    *widgets.Paragraph
	latencyHistory []float64

	done   chan struct{}
	closed chan struct{}
}

// NewDashboard initializes termui and builds the dashboard widgets for
// collector. label identifies the run (e.g. "load: openai/smoke") in the
// header.
func NewDashboard(collector *Collector, label string) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("livestats: init terminal: %w", err)
	}

	d := &Dashboard{
		collector:      collector,
		label:          label,
		latencyHistory: make([]float64, 0, 100),
		done:           make(chan struct{}),
		closed:         make(chan struct{}),
	}
	d.initWidgets()
	d.layout()
	return d, nil
}

func (d *Dashboard) initWidgets() {
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Live latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.rpsGauge = widgets.NewGauge()
	d.rpsGauge.Title = "Requests/sec"
	d.rpsGauge.BarColor = ui.ColorBlue
	d.rpsGauge.BorderStyle.Fg = ui.ColorCyan

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = d.label
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) layout() {
	w, h := ui.TerminalDimensions()
	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, w, h)
	d.grid.Set(
		ui.NewRow(0.2, ui.NewCol(1.0, d.summaryPara)),
		ui.NewRow(0.2, ui.NewCol(1.0, d.rpsGauge)),
		ui.NewRow(0.6, ui.NewCol(1.0, d.latencySparkle)),
	)
}

// Start begins the refresh loop in a background goroutine, updating on a
// 500ms cadence until Stop is called. This is the only component in the
// harness that renders to the operator's own terminal mid-run; it never
// forwards data anywhere else.
func (d *Dashboard) Start() {
	go d.run()
}

// Stop halts the refresh loop and restores the terminal.
func (d *Dashboard) Stop() {
	close(d.done)
	<-d.closed
	ui.Close()
}

func (d *Dashboard) run() {
	defer close(d.closed)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	d.render()
	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

func (d *Dashboard) update() {
	snap := d.collector.Snapshot()

	if snap.MeanLatencyMs > 0 {
		d.latencyHistory = append(d.latencyHistory, snap.MeanLatencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
	}

	maxRPS := 100.0
	if snap.RequestsPerSec > maxRPS {
		maxRPS = snap.RequestsPerSec
	}
	percent := int((snap.RequestsPerSec / maxRPS) * 100)
	if percent > 100 {
		percent = 100
	}
	d.rpsGauge.Percent = percent
	d.rpsGauge.Label = fmt.Sprintf("%.1f RPS", snap.RequestsPerSec)

	successRate := 0.0
	if snap.Total > 0 {
		successRate = float64(snap.Successes) / float64(snap.Total) * 100
	}
	d.summaryPara.Text = fmt.Sprintf(
		"Total: %d  Success: %.1f%%\nLatency mean %.1fms  p50 %.1fms  p90 %.1fms  p99 %.1fms",
		snap.Total, successRate, snap.MeanLatencyMs, snap.P50LatencyMs, snap.P90LatencyMs, snap.P99LatencyMs,
	)
}

func (d *Dashboard) render() {
	ui.Render(d.grid)
}
