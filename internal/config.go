package internal

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.yaml.in/yaml/v4"
)

// Config holds the configuration for the application, parsed from a YAML file.
type Config struct {
	Source     Source         `yaml:"source"`
	Refresh    time.Duration  `yaml:"refresh"`
	Timezone   string         `yaml:"timezone"`
	Layout     Layout         `yaml:"layout"`
	Charts     []ChartConfig  `yaml:"charts"`
	Weather    Weather        `yaml:"weather"`
	Summary    Summary        `yaml:"summary"`
	Screenshot ScreenshotSize `yaml:"screenshot"`
}

type Source struct {
	BaseURL     string `yaml:"base_url"`     // Where the daily CSV files are served from.
	Extension   string `yaml:"extension"`    // Appended to the date to get the file name.
	DefaultDate string `yaml:"default_date"` // Used when no date is requested.
	IndexURL    string `yaml:"index_url"`    // Optional HTML listing of the available files.
}

type Layout struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ChartConfig struct {
	ID            string            `yaml:"id"`
	Title         string            `yaml:"title"`
	Label         string            `yaml:"label"`
	Unit          string            `yaml:"unit"`
	Column        int               `yaml:"column"`
	Baseline      bool              `yaml:"baseline"`
	Secondary     *SecondaryConfig  `yaml:"secondary"`
	DecimalPlaces int               `yaml:"decimal_places"`
	AvgPoints     int               `yaml:"avg_points"`
	Trend         bool              `yaml:"trend"`
	ShowCharge    bool              `yaml:"show_charge"`
	Extents       *ExtentsConfig    `yaml:"extents"`
	Thresholds    []ThresholdConfig `yaml:"thresholds"`
}

type SecondaryConfig struct {
	Label    string `yaml:"label"`
	Unit     string `yaml:"unit"`
	Column   int    `yaml:"column"`
	Baseline bool   `yaml:"baseline"` // Show the value relative to the first sample of the day.
}

// ExtentsConfig pads the y domain of a chart.
type ExtentsConfig struct {
	Below float64 `yaml:"below"`
	Above float64 `yaml:"above"`
}

type ThresholdConfig struct {
	Value float64 `yaml:"value"`
	Color string  `yaml:"color"`
}

type Weather struct {
	Location Location `yaml:"location"`
}

type Location struct {
	Lat float32 `yaml:"lat"`
	Lng float32 `yaml:"lng"`
}

type Summary struct {
	OpenAIAPIKey string `yaml:"open_ai_api_key"`
	Prompt       string `yaml:"prompt"`
}

type ScreenshotSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func defaultConfig() Config {
	return Config{
		Source: Source{
			Extension:   ".csv",
			DefaultDate: "today",
		},
		Refresh: 30 * time.Second,
		Layout: Layout{
			Width:  1000,
			Height: 300,
		},
		Charts: []ChartConfig{
			{
				ID:        "energy_graph",
				Title:     "Grid",
				Label:     "Power",
				Unit:      "W",
				Column:    3,
				Secondary: &SecondaryConfig{Label: "Energy", Unit: "Wh", Column: 5, Baseline: true},
			},
			{
				ID:        "house_energy_graph",
				Title:     "House",
				Label:     "Power",
				Unit:      "W",
				Column:    7,
				Secondary: &SecondaryConfig{Label: "Energy", Unit: "Wh", Column: 9, Baseline: true},
			},
			{
				ID:            "voltage_graph",
				Title:         "Battery",
				Label:         "Battery",
				Unit:          "V",
				Column:        1,
				DecimalPlaces: 2,
				ShowCharge:    true,
				Extents:       &ExtentsConfig{Below: 0.2, Above: 0.1},
				Thresholds: []ThresholdConfig{
					{Value: 3.65 * BatteryCells, Color: "orange"},
					{Value: 3.5 * BatteryCells, Color: "red"},
					{Value: 4.1 * BatteryCells, Color: "orange"},
					{Value: 4.15 * BatteryCells, Color: "red"},
				},
			},
		},
		Screenshot: ScreenshotSize{
			Width:  1280,
			Height: 1024,
		},
		Summary: Summary{
			Prompt: "Write two friendly sentences about today's home energy use for the family.",
		},
	}
}

func ReadConfig(reader io.Reader) (Config, error) {
	config := defaultConfig()
	if err := yaml.NewDecoder(reader).Decode(&config); err != nil && err != io.EOF {
		return config, err
	}
	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c Config) validate() error {
	var err error
	if c.Refresh <= 0 {
		err = errors.Join(err, fmt.Errorf("refresh must be positive, got %s", c.Refresh))
	}
	if c.Source.BaseURL != "" {
		if _, e := url.Parse(c.Source.BaseURL); e != nil {
			err = errors.Join(err, fmt.Errorf("invalid source base_url: %w", e))
		}
	}
	if _, e := c.GetLocation(); e != nil {
		err = errors.Join(err, e)
	}
	if float64(c.Layout.Width) <= chartMargin.Left+chartMargin.Right ||
		float64(c.Layout.Height) <= chartMargin.Top+chartMargin.Bottom {
		err = errors.Join(err, fmt.Errorf("layout %dx%d leaves no room for the plot", c.Layout.Width, c.Layout.Height))
	}
	if len(c.Charts) == 0 {
		err = errors.Join(err, errors.New("no charts configured"))
	}
	ids := map[string]bool{}
	for _, chart := range c.Charts {
		if chart.ID == "" {
			err = errors.Join(err, errors.New("chart without an id"))
		} else if ids[chart.ID] {
			err = errors.Join(err, fmt.Errorf("duplicate chart id %q", chart.ID))
		}
		ids[chart.ID] = true
		if chart.Column < 1 {
			err = errors.Join(err, fmt.Errorf("chart %q: column must be at least 1", chart.ID))
		}
		if chart.Secondary != nil && chart.Secondary.Column < 1 {
			err = errors.Join(err, fmt.Errorf("chart %q: secondary column must be at least 1", chart.ID))
		}
		if chart.DecimalPlaces < 0 || chart.AvgPoints < 0 {
			err = errors.Join(err, fmt.Errorf("chart %q: decimal_places and avg_points can't be negative", chart.ID))
		}
	}
	return err
}

// GetLocation returns the time zone the day boundary and labels are computed in.
func (c Config) GetLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ToChartOptions converts the display settings of a chart.
func (c ChartConfig) ToChartOptions() ChartOptions {
	options := ChartOptions{
		DecimalPlaces: c.DecimalPlaces,
		AvgPoints:     c.AvgPoints,
		Trend:         c.Trend,
		ShowCharge:    c.ShowCharge,
	}
	if c.Extents != nil {
		below, above := c.Extents.Below, c.Extents.Above
		options.Extents = func(lo, hi float64) (float64, float64) {
			return lo - below, hi + above
		}
	}
	return options
}

// ToThresholds converts the threshold lines of a chart.
func (c ChartConfig) ToThresholds() []Threshold {
	var thresholds []Threshold
	for _, t := range c.Thresholds {
		thresholds = append(thresholds, Threshold(t))
	}
	return thresholds
}
