package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/budgetwise/forecast-service/internal/chart"
	"github.com/budgetwise/forecast-service/internal/config"
	"github.com/budgetwise/forecast-service/internal/forecast"
	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/budgetwise/forecast-service/internal/repository"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagEmail   string
	flagMonths  int
	flagWidth   int
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "forecastctl",
	Short: "Inspect expense forecasts",
	Long:  "Compute a user's expense forecast straight from the database.",
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Daily-average projection for next month",
	RunE:  runTrend,
}

var regressionCmd = &cobra.Command{
	Use:   "regression",
	Short: "Least-squares trend over recent months",
	RunE:  runRegression,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagEmail, "email", "e", "", "User e-mail")
	rootCmd.PersistentFlags().IntVarP(&flagWidth, "width", "w", 40, "Chart width")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("email")

	regressionCmd.Flags().IntVarP(&flagMonths, "months", "m", forecast.DefaultTrendMonths, "Number of months to fit")

	rootCmd.AddCommand(trendCmd, regressionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openForecaster connects to the configured store
func openForecaster() (*forecast.Forecaster, func(), error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.StoreDriver != "postgres" {
		return nil, nil, fmt.Errorf("forecastctl needs STORE_DRIVER=postgres, got %s", cfg.StoreDriver)
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return forecast.NewForecaster(repository.NewPostgresStore(db), logger), func() { db.Close() }, nil
}

func runTrend(cmd *cobra.Command, _ []string) error {
	f, closeDB, err := openForecaster()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := f.ComputeExpensePrediction(context.Background(), flagEmail)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printPoints(out, p.HistoricalData, p.PredictedData)
	fmt.Fprintf(out, "\nNext month prediction: %s\n\n", decimal.NewFromFloat(p.NextMonthPrediction).StringFixed(2))
	fmt.Fprintln(out, chart.RenderASCII(p.HistoricalData, p.PredictedData, flagWidth, 8))
	return nil
}

func runRegression(cmd *cobra.Command, _ []string) error {
	f, closeDB, err := openForecaster()
	if err != nil {
		return err
	}
	defer closeDB()

	trend, err := f.ComputeRegressionTrend(context.Background(), flagEmail, flagMonths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printPoints(out, trend.HistoricalData, trend.PredictedData)
	fmt.Fprintf(out, "\nslope %s/month, intercept %s, next month %s\n\n",
		decimal.NewFromFloat(trend.Slope).StringFixed(2),
		decimal.NewFromFloat(trend.Intercept).StringFixed(2),
		decimal.NewFromFloat(trend.NextMonthPrediction).StringFixed(2))
	fmt.Fprintln(out, chart.RenderASCII(trend.HistoricalData, trend.PredictedData, flagWidth, 8))
	return nil
}

func printPoints(out io.Writer, historical, predicted []models.DataPoint) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tAMOUNT\tKIND")
	for _, p := range historical {
		fmt.Fprintf(tw, "%s\t%s\tactual\n", p.Label, decimal.NewFromFloat(p.Value).StringFixed(2))
	}
	for _, p := range predicted {
		fmt.Fprintf(tw, "%s\t%s\tpredicted\n", p.Label, decimal.NewFromFloat(p.Value).StringFixed(2))
	}
	tw.Flush()
}
