package commands

import (
	"context"
	"ecourts-backend/internal/api"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/captcha"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/history"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/service"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	verbose       bool
	historyDB     string
	tesseractPath string
)

var rootCmd = &cobra.Command{
	Use:   "ecourts-cli",
	Short: "ecourts-cli searches the eCourts High Court and district portals from the terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	rootCmd.PersistentFlags().StringVar(&historyDB, "db", ".dev/history.db", "The history database, a sqlite path or libsql:// url.")
	rootCmd.PersistentFlags().StringVar(&tesseractPath, "tesseract", "", "Path to the tesseract binary used to guess captchas.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func portalNames() string {
	names := make([]string, 0, len(api.Portals))
	for name := range api.Portals {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func parsePortal(name string) (ecourts.Variant, error) {
	variant, ok := api.Portals[name]
	if !ok {
		return "", fmt.Errorf("unknown portal %q, expected one of %s", name, portalNames())
	}
	return variant, nil
}

func guesser(tel telemetry.API) captcha.TextGuesser {
	if tesseractPath == "" {
		return captcha.Nop{}
	}
	return captcha.NewTesseract(tesseractPath, 10*time.Second, tel)
}

// openService builds a service with an in-memory attachment cache over the
// history database. The returned func releases it.
func openService(ctx context.Context) (service.Service, func(), error) {
	tel := telemetry.SlogAPI{}
	clock := chrono.NewStandardTime()

	store, err := attachments.NewStore(attachments.StoreOptions{}, clock, tel)
	if err != nil {
		return service.Service{}, nil, err
	}
	sqlDB, err := history.Open(historyDB)
	if err != nil {
		return service.Service{}, nil, fmt.Errorf("open history: %w", err)
	}
	hist, err := history.NewStore(ctx, sqlDB, clock, tel)
	if err != nil {
		sqlDB.Close()
		return service.Service{}, nil, fmt.Errorf("open history: %w", err)
	}

	svc := service.NewService(store, hist,
		service.WithGuesser(guesser(tel)),
		service.WithTime(clock),
		service.WithTelemetry(tel),
	)
	return svc, func() { sqlDB.Close() }, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// describe turns a service error into the message shown to the user.
func describe(err error) error {
	failure := service.Classify(err)
	if failure.Reason == service.ReasonInternal {
		return err
	}
	return failure
}
