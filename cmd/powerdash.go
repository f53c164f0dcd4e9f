package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/albertb/powerdash/internal"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal("failed to get user home directory:", err)
	}
	defaultConfigPath := filepath.Join(home, ".config", "powerdash", "config.yaml")

	configPath := flag.String("config", defaultConfigPath, "path to the config file")
	dev := flag.Bool("dev", false, "whether to keep the webserver running and push live updates")
	addr := flag.String("addr", ":9999", "the address the webserver should listen on in dev mode")
	fake := flag.Bool("fake", false, "whether to generate fake energy, weather and summary data")
	img := flag.String("img", "screen.png", "the path to save the rendered image")
	date := flag.String("date", "", "the day to render, defaults to the source's default date")

	flag.Parse()

	configFile, err := os.Open(*configPath)
	if err != nil {
		log.Fatal("failed to open config file:", err)
	}
	defer configFile.Close()

	cfg, err := internal.ReadConfig(configFile)
	if err != nil {
		log.Fatal("failed to read config file:", err)
	}

	if err := internal.Run(cfg, *dev, *fake, *img, *addr, *date); err != nil {
		log.Fatal("failed to run:", err)
	}
}
