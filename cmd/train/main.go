// Command train fits the conversion model on an exported table and saves the artifact.
package main

import (
	"os"

	"conversion-insights-go/internal/config"
	"conversion-insights-go/internal/dataset"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("invalid configuration")
	}
	log := logger.NewWithOptions(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Service:     "conversion-train",
	})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("training failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	table, _, err := dataset.LoadAndSummarize(cfg.DatasetPath, log)
	if err != nil {
		return err
	}

	art, evals, err := model.Train(table, model.TrainOptions{
		TestFraction: cfg.TestFraction,
		Seed:         cfg.TrainSeed,
	}, log)
	if err != nil {
		return err
	}
	for _, ev := range evals {
		log.WithField("model", ev.Name).
			WithField("accuracy", ev.Accuracy).
			WithField("roc_auc", ev.ROCAUC).
			Info("evaluation")
	}

	if err := art.Save(cfg.ArtifactPath); err != nil {
		return err
	}
	log.WithField("path", cfg.ArtifactPath).
		WithField("model_id", art.ID).
		WithField("model", art.Evaluation.Name).
		WithField("features", art.Schema.Width()).
		Info("model saved")
	return nil
}
