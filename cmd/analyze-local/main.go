package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"example/engine-api/app"
	"example/engine-api/app/config"
	"example/engine-api/app/models"
)

func main() {
	mode := flag.String("mode", "analyze", "analyze or probe")
	flag.Parse()

	fen := flag.Arg(0)
	if fen == "" {
		log.Fatal("usage: analyze-local [-mode analyze|probe] <fen>")
	}
	if err := app.ValidateFEN(fen); err != nil {
		log.Fatalf("invalid fen: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m := models.ModeAnalyze
	if *mode == string(models.ModeProbe) {
		m = models.ModeProbe
	}

	res, err := app.RunSession(cfg, m, fen)
	if err != nil {
		log.Fatalf("session failed: %v", err)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
}
