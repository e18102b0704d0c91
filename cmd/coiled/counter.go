package main

import (
	"context"
	"fmt"

	"github.com/delaneyj/coiled/bind"
	"github.com/delaneyj/coiled/internal/demo"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v3"
)

func runCounter(ctx context.Context, cmd *cli.Command) error {
	model, err := demo.NewModel(nil)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// the event loop is the only goroutine touching cells, so a change only
	// has to queue a redraw
	scope := bind.NewScope(bind.HostFunc(func() {
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}))
	defer scope.Teardown()

	status := ""
	draw := func() {
		view := demo.Render(scope, model)
		screen.Clear()
		bold := tcell.StyleDefault.Bold(true)
		drawText(screen, 1, 1, bold, "coiled counter")
		drawText(screen, 1, 3, tcell.StyleDefault, fmt.Sprintf("count    %d", view.Count))
		drawText(screen, 1, 4, tcell.StyleDefault, fmt.Sprintf("step     %d", view.Step))
		drawText(screen, 1, 5, tcell.StyleDefault, fmt.Sprintf("doubled  %d", view.Doubled))
		drawText(screen, 1, 6, tcell.StyleDefault, fmt.Sprintf("parity   %s", view.Parity))
		drawText(screen, 1, 7, tcell.StyleDefault, fmt.Sprintf("summary  %s", view.Summary))
		drawText(screen, 1, 9, tcell.StyleDefault.Dim(true), "↑/+ increment  ↓/- decrement  1-9 step  r reset  q quit")
		if status != "" {
			drawText(screen, 1, 11, tcell.StyleDefault.Foreground(tcell.ColorRed), status)
		}
		screen.Show()
	}
	draw()

	for {
		var err error
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			draw()
		case *tcell.EventInterrupt:
			draw()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyUp, ev.Rune() == '+':
				err = model.Increment()
			case ev.Key() == tcell.KeyDown, ev.Rune() == '-':
				err = model.Decrement()
			case ev.Rune() >= '1' && ev.Rune() <= '9':
				err = model.SetStep(int(ev.Rune() - '0'))
			case ev.Rune() == 'r':
				err = model.Reset()
			}
		}
		if err != nil {
			status = err.Error()
			draw()
		} else if status != "" {
			status = ""
			draw()
		}
	}
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
