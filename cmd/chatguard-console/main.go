package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"chatguard/internal/artifact"
	"chatguard/internal/config"
	"chatguard/internal/normalizer"
	"chatguard/internal/service"
	"chatguard/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, vecPath, clfPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/chatguard/config.yaml if not provided)")
	flag.StringVar(&vecPath, "vectorizer", "", "Vectorizer artifact (overrides config)")
	flag.StringVar(&clfPath, "classifier", "", "Classifier artifact (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	defVec, defClf, err := cfg.Artifacts.Paths()
	if err != nil {
		log.Fatal(err)
	}
	if vecPath == "" {
		vecPath = defVec
	}
	if clfPath == "" {
		clfPath = defClf
	}

	store, err := artifact.Load(artifact.Locations{Vectorizer: vecPath, Classifier: clfPath})
	if err != nil {
		log.Fatalf("failed to load artifacts: %v", err)
	}
	svc, err := service.NewInferenceService(normalizer.New(), store.Vectorizer(), store.Classifier(), cfg.Inference.CacheSize)
	if err != nil {
		log.Fatalf("failed to build inference service: %v", err)
	}

	header := fmt.Sprintf("%s + %s, %d features", store.Vectorizer().Name(), store.Classifier().Name(), store.Dimension())
	m := tui.New(svc, store.Classifier(), header)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
