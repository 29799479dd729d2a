package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/repository"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/config"
)

var (
	eventsRef   string
	eventsLimit int32
)

// eventsCmd is the operator's view into the webhook audit log: rejected
// and errored rows are the dead-letter queue for deliveries the forced-200
// providers would otherwise swallow silently.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List webhook events recorded for a transaction reference",
	Run:   runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsRef, "ref", "", "transaction reference to look up")
	eventsCmd.Flags().Int32Var(&eventsLimit, "limit", 100, "maximum number of events to list")
	_ = eventsCmd.MarkFlagRequired("ref")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eventRepo := repository.NewWebhookEventRepository(db)
	events, err := eventRepo.ListByTransactionRef(ctx, eventsRef, eventsLimit)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to list webhook events")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tPROVIDER\tRAW STATUS\tOUTCOME\tDISPOSITION\tERROR")
	for _, event := range events {
		errText := ""
		if event.Error != nil {
			errText = *event.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			event.CreatedAt.Format(time.RFC3339),
			event.Provider,
			event.RawStatus,
			event.Outcome,
			event.Disposition,
			errText,
		)
	}
	_ = w.Flush()
}
