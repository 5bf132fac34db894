package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/acpanel/internal/action"
	"github.com/five82/acpanel/internal/derive"
	"github.com/five82/acpanel/internal/files"
	"github.com/five82/acpanel/internal/printer"
)

var (
	printerArg  string
	saveInCloud bool
)

var printersCmd = &cobra.Command{
	Use:   "printers",
	Short: "List the integration's printers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		printers := printer.Printers(s.snap.Devices)
		if len(printers) == 0 {
			return errNoPrinters
		}
		rows := make([][]string, 0, len(printers))
		for i := range printers {
			d := &printers[i]
			pc := printer.Bind(printer.Selection{PrinterID: d.ID, Device: d}, s.snap.States, s.snap.Entities)
			status := derive.Stat(derive.KindStatus, pc, derive.Options{}, time.Now())
			rows = append(rows, []string{
				d.ID,
				d.DisplayName(),
				d.Model,
				status.Value,
				derive.FormatPercent(derive.Percent(pc), true),
			})
		}
		fmt.Println(renderTable([]string{"ID", "Name", "Model", "Status", "Progress"}, rows))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress and monitored stats for a printer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		pc, err := s.printer(printerArg)
		if err != nil {
			return err
		}
		opts := derive.Options{
			TemperatureUnit: derive.ParseUnit(s.prefs.TemperatureUnit),
			Round:           s.prefs.Round,
			Use24Hr:         s.prefs.Use24Hr,
		}
		kinds := derive.DefaultKinds
		if len(s.prefs.MonitoredStats) > 0 {
			kinds = make([]derive.Kind, len(s.prefs.MonitoredStats))
			for i, name := range s.prefs.MonitoredStats {
				kinds[i] = derive.Kind(name)
			}
		}

		now := time.Now()
		rows := [][]string{{"Progress", derive.FormatPercent(derive.Percent(pc), s.prefs.Round)}}
		for _, kind := range kinds {
			line := derive.Stat(kind, pc, opts, now)
			rows = append(rows, []string{line.Name, line.Value})
		}
		fmt.Println(pc.Device.DisplayName())
		fmt.Println(renderTable(nil, rows))
		return nil
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List and manage printer files",
}

var filesListCmd = &cobra.Command{
	Use:       "list <local|udisk|cloud>",
	Short:     "List files on a storage backend",
	Args:      cobra.ExactArgs(1),
	ValidArgs: backendKinds(),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := lookupBackend(args[0])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		pc, err := s.printer(printerArg)
		if err != nil {
			return err
		}
		entries := backend.ListFiles(pc.Entities, pc.Part)
		if len(entries) == 0 {
			fmt.Printf("No %s\n", strings.ToLower(backend.Title))
			return nil
		}
		fmt.Println(renderTable([]string{"Name", "Size", "Modified"}, fileRows(entries, time.Now())))
		return nil
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <local|udisk|cloud> <filename>",
	Short: "Delete a file from a storage backend",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := lookupBackend(args[0])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		pc, err := s.printer(printerArg)
		if err != nil {
			return err
		}
		entry := files.Entry{Name: args[1]}
		outcome, ok := backend.DeleteFile(cmd.Context(), s.dispatcher(), pc.Device, entry)
		if !ok {
			return fmt.Errorf("cannot delete %q from %s", args[1], strings.ToLower(backend.Title))
		}
		return report(outcome, "Deleted "+args[1])
	},
}

var filesRefreshCmd = &cobra.Command{
	Use:       "refresh <local|udisk|cloud>",
	Short:     "Ask the printer for a fresh file listing",
	Args:      cobra.ExactArgs(1),
	ValidArgs: backendKinds(),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := lookupBackend(args[0])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		pc, err := s.printer(printerArg)
		if err != nil {
			return err
		}
		outcome, err := backend.Refresh(cmd.Context(), s.dispatcher(), pc.Entities, pc.Part)
		if err != nil {
			return err
		}
		return report(outcome, "Refresh requested")
	},
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download <filename>",
	Short: "Download a cloud file to the printer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		pc, err := s.printer(printerArg)
		if err != nil {
			return err
		}
		entry := findEntry(files.Cloud.ListFiles(pc.Entities, pc.Part), args[0])
		req, err := files.Cloud.DownloadRequest(pc.Device, entry)
		if err != nil {
			return err
		}
		return report(s.dispatcher().Send(cmd.Context(), req), "Download requested for "+entry.Name)
	},
}

var printCmd = &cobra.Command{
	Use:   "print key=value...",
	Short: "Start a print through the integration's print service",
	Long: `Start a print. Arguments are key=value pairs sent as the service payload;
integers, floats and booleans are sent as JSON values. The printer's
device_id and config_entry are added unless the payload sets them.

  acpanel print -p <printer-id> uploaded_gcode_file=/config/www/benchy.gcode`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := action.ParsePayload(strings.Join(args, " "))
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		pc, err := s.printer(printerArg)
		if err != nil {
			return err
		}
		service := action.ServicePrintNoCloudSave
		if saveInCloud {
			service = action.ServicePrintSaveInCloud
		}
		return report(s.dispatcher().Run(cmd.Context(), pc.Device, service, payload), "Print started")
	},
}

func init() {
	for _, c := range []*cobra.Command{statusCmd, filesCmd, printCmd} {
		c.PersistentFlags().StringVarP(&printerArg, "printer", "p", "", "printer device ID or name (optional with one printer)")
	}
	printCmd.Flags().BoolVar(&saveInCloud, "save-in-cloud", false, "keep the uploaded file in the Anycubic cloud")

	filesCmd.AddCommand(filesListCmd, filesRmCmd, filesRefreshCmd, filesDownloadCmd)
	rootCmd.AddCommand(printersCmd, statusCmd, filesCmd, printCmd)
}

func backendKinds() []string {
	kinds := make([]string, len(files.Backends))
	for i, b := range files.Backends {
		kinds[i] = string(b.Kind)
	}
	return kinds
}

func lookupBackend(kind string) (files.Backend, error) {
	b, ok := files.ByKind(kind)
	if !ok {
		return files.Backend{}, fmt.Errorf("unknown file backend %q (want %s)", kind, strings.Join(backendKinds(), ", "))
	}
	return b, nil
}

// findEntry returns the listed entry named name, or a bare entry when the
// listing does not have it.
func findEntry(entries []files.Entry, name string) files.Entry {
	for _, e := range entries {
		if e.Name == name {
			return e
		}
	}
	return files.Entry{Name: name}
}

func fileRows(entries []files.Entry, now time.Time) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		size, modified := "-", "-"
		if e.Size > 0 {
			size = humanize.Bytes(uint64(e.Size))
		}
		if !e.Modified.IsZero() {
			modified = humanize.RelTime(e.Modified, now, "ago", "from now")
		}
		rows = append(rows, []string{e.Name, size, modified})
	}
	return rows
}
