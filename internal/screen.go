package internal

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// Run builds the dashboard from config. In dev mode it serves the live
// dashboard on addr until interrupted, otherwise it saves a screenshot of the
// given date to img.
func Run(config Config, dev, fake bool, img, addr, date string) error {
	loc, err := config.GetLocation()
	if err != nil {
		return err
	}

	var source DataSource
	if fake {
		source = FakeSource{Location: loc}
	} else {
		if config.Source.BaseURL == "" {
			return errors.New("source base_url is required unless running with fake data")
		}
		source = NewHTTPSource(config.Source.BaseURL)
	}

	metrics := NewMetrics()
	dashboard, err := NewDashboard(config, source, metrics)
	if err != nil {
		return err
	}

	if !fake && config.Source.IndexURL != "" {
		if dashboard.Index, err = NewDayIndex(config.Source.IndexURL, config.Source.Extension, config.Refresh); err != nil {
			return err
		}
	}

	weather := config.GetWeatherOptions()
	if fake {
		dashboard.Forecast = NewFakeForecast()
	} else if weather.Enabled() {
		dashboard.Forecast = NewForecast(weather)
	}

	summary := config.GetSummaryOptions()
	if fake {
		dashboard.Summary = NewFakeSummarizer()
	} else if summary.OpenAIAPIKey != "" {
		dashboard.Summary = NewSummarizer(summary)
	}

	server, err := NewServer(dashboard, metrics)
	if err != nil {
		return err
	}

	if dev {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go dashboard.Run(ctx)
		return server.ListenAndServe(ctx, addr)
	}

	buf, err := Render(server.Handler(), dashboard.Normalize(date), config.Screenshot)
	if err != nil {
		return err
	}
	return os.WriteFile(img, buf, 0644)
}
