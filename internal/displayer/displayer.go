package displayer

import (
	"context"
	"fmt"
	"time"

	"obdpoll/internal/obd"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Displayer renders the live readings and trouble codes in a terminal UI.
type Displayer struct {
	app    *tview.Application
	tabs   *tview.Pages
	poller *obd.Poller
	ctx    context.Context
	cancel context.CancelFunc

	// UI elements cached for updates
	rpmText     *tview.TextView
	speedText   *tview.TextView
	coolantText *tview.TextView
	statusText  *tview.TextView
	helpText    *tview.TextView
	dtcTable    *tview.Table
}

func New(poller *obd.Poller) *Displayer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Displayer{
		app:    tview.NewApplication(),
		tabs:   tview.NewPages(),
		poller: poller,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (d *Displayer) Run() error {
	dashboard := d.buildDashboard()
	d.dtcTable = d.buildDTC()

	// header area: title, status, help
	title := tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("obdpoll - OBD-II serial poller")
	d.statusText = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true)
	d.helpText = tview.NewTextView().SetTextAlign(tview.AlignCenter)

	headerFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	headerFlex.AddItem(title, 1, 0, false)
	headerFlex.AddItem(d.statusText, 1, 0, false)
	headerFlex.AddItem(d.helpText, 1, 0, false)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	mainFlex.AddItem(headerFlex, 3, 0, false)

	d.tabs.AddPage("dashboard", dashboard, true, true)
	d.tabs.AddPage("dtc", d.dtcTable, true, false)
	mainFlex.AddItem(d.tabs, 0, 1, true)

	d.app.SetRoot(mainFlex, true)
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			d.Shutdown()
			return nil
		case '1':
			d.tabs.SwitchToPage("dashboard")
			return nil
		case '2':
			d.tabs.SwitchToPage("dtc")
			return nil
		}
		return event
	})

	d.updateValues()
	d.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		d.updateValues()
		return false
	})

	go d.refreshLoop()

	return d.app.Run()
}

func (d *Displayer) Shutdown() {
	d.cancel()
	d.poller.Stop()
	d.app.Stop()
}

func (d *Displayer) buildDashboard() *tview.Flex {
	d.rpmText = tview.NewTextView().SetDynamicColors(true)
	d.speedText = tview.NewTextView().SetDynamicColors(true)
	d.coolantText = tview.NewTextView().SetDynamicColors(true)

	infoFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	infoFlex.AddItem(d.rpmText, 1, 0, false)
	infoFlex.AddItem(d.speedText, 1, 0, false)
	infoFlex.AddItem(d.coolantText, 1, 0, false)
	return infoFlex
}

func (d *Displayer) buildDTC() *tview.Table {
	tbl := tview.NewTable().SetBorders(true)
	tbl.SetCell(0, 0, tview.NewTableCell("Code").SetSelectable(false).SetAlign(tview.AlignCenter))
	tbl.SetCell(0, 1, tview.NewTableCell("Description").SetSelectable(false).SetAlign(tview.AlignCenter))
	return tbl
}

func formatReading(r obd.Reading, ok bool) string {
	if !ok || r.Value == nil {
		return "--"
	}
	return r.Value.String()
}

func (d *Displayer) updateValues() {
	rpm, okRPM := d.poller.Reading(obd.PIDEngineRPM)
	speed, okSpeed := d.poller.Reading(obd.PIDVehicleSpeed)
	coolant, okCoolant := d.poller.Reading(obd.PIDCoolantTemp)

	d.rpmText.SetText(fmt.Sprintf("RPM: %s", formatReading(rpm, okRPM)))
	d.speedText.SetText(fmt.Sprintf("Speed: %s", formatReading(speed, okSpeed)))
	d.coolantText.SetText(fmt.Sprintf("Coolant: %s", formatReading(coolant, okCoolant)))

	d.helpText.SetText("[1 - Dashboard] [2 - DTC] [q - Quit]")

	status := "[red]disconnected[white]"
	if d.poller.Connected() {
		status = "[green]connected[white]"
	}
	d.statusText.SetText(fmt.Sprintf("Status: %s", status))
}

func (d *Displayer) refreshLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.app.QueueUpdateDraw(func() {
				dtcs := d.poller.DTCs()
				for r := d.dtcTable.GetRowCount() - 1; r >= 1; r-- {
					d.dtcTable.RemoveRow(r)
				}
				for i, e := range dtcs {
					d.dtcTable.SetCell(i+1, 0, tview.NewTableCell(e.Code))
					d.dtcTable.SetCell(i+1, 1, tview.NewTableCell(e.Description))
				}
			})
		}
	}
}
