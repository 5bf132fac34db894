package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/app"
	"github.com/five82/acpanel/internal/config"
	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/prefs"
	"github.com/five82/acpanel/internal/printer"
	"github.com/five82/acpanel/internal/state"
)

// session is one connection used by a single CLI command.
type session struct {
	conn  app.Conn
	snap  state.Snapshot
	prefs prefs.Prefs
}

func connect(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	userPrefs, _ := prefs.Load(prefsPath)

	conn, store, err := app.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &session{conn: conn, snap: store.Snapshot(), prefs: userPrefs}, nil
}

func (s *session) Close() error {
	return s.conn.Close()
}

func (s *session) dispatcher() *action.Dispatcher {
	return &action.Dispatcher{Caller: s.conn}
}

// printer binds the printer named by arg. See findPrinter.
func (s *session) printer(arg string) (printer.Context, error) {
	device, err := findPrinter(printer.Printers(s.snap.Devices), arg)
	if err != nil {
		return printer.Context{}, err
	}
	sel := printer.Selection{PrinterID: device.ID, Device: device}
	return printer.Bind(sel, s.snap.States, s.snap.Entities), nil
}

var errNoPrinters = errors.New("no Anycubic printers found")

// findPrinter matches arg against device IDs, then display names without
// regard to case. An empty arg picks the only printer when there is one.
func findPrinter(printers []hass.Device, arg string) (*hass.Device, error) {
	if len(printers) == 0 {
		return nil, errNoPrinters
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		if len(printers) == 1 {
			return &printers[0], nil
		}
		return nil, fmt.Errorf("%d printers found, name one with --printer", len(printers))
	}
	for i := range printers {
		if printers[i].ID == arg {
			return &printers[i], nil
		}
	}
	var match *hass.Device
	for i := range printers {
		if strings.EqualFold(printers[i].DisplayName(), arg) {
			if match != nil {
				return nil, fmt.Errorf("printer name %q is ambiguous, use the device ID", arg)
			}
			match = &printers[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("printer %q not found", arg)
	}
	return match, nil
}

// report turns a service outcome into the command result.
func report(o action.Outcome, done string) error {
	if !o.OK() {
		return errors.New(o.Message())
	}
	fmt.Println(done)
	return nil
}
