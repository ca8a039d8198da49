package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"priceflow/config"
	"priceflow/features"
	"priceflow/logger"
	"priceflow/reader"
	"priceflow/train"
	"priceflow/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	inputPath := flag.String("input", "", "Path to listings file (.ndjson, .jsonl or .csv)")
	task := flag.String("task", "all", "Training task: all, regression, classification or features")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	if cfg.Logging.CloudWatch.Enabled {
		logger.InitCloudWatch(cfg.Logging.CloudWatch.Region, cfg.Logging.CloudWatch.Namespace)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Priceflow.Name,
		"version": cfg.Priceflow.Version,
	}).Info("starting priceflow training pipeline")

	if *inputPath == "" {
		log.Error("missing -input listings file")
		os.Exit(1)
	}

	listings, err := reader.NewListingsReader().ReadFile(*inputPath)
	if err != nil {
		log.WithError(err).Error("failed to read listings")
		os.Exit(1)
	}
	if listings.Rows() == 0 {
		log.Info("no listings found; nothing to do")
		return
	}

	feat := features.BuildTraining(cfg, listings)
	tw := writer.NewTableWriter()

	featPath := filepath.Join(cfg.Storage.ProcessedDir, "features.parquet")
	if err := tw.WriteFile(feat, featPath); err != nil {
		log.WithError(err).Error("failed to write feature table")
		os.Exit(1)
	}

	hasPrice := feat.Has("final_price")
	hasSold := feat.Has("sold")

	var trainPath string
	if hasPrice || hasSold {
		trainTable := features.TrainingTable(feat)
		trainPath = filepath.Join(cfg.Storage.ProcessedDir, "train.parquet")
		if err := tw.WriteFile(trainTable, trainPath); err != nil {
			log.WithError(err).Error("failed to write training table")
			os.Exit(1)
		}

		harness := train.NewHarness(cfg)
		if hasPrice && (*task == "all" || *task == "regression") {
			if _, err := harness.TrainRegression(trainTable, "final_price"); err != nil {
				log.WithError(err).Error("regression training failed")
				os.Exit(1)
			}
		}
		if hasSold && (*task == "all" || *task == "classification") {
			if _, err := harness.TrainClassification(trainTable, "sold"); err != nil {
				log.WithError(err).Error("classification training failed")
				os.Exit(1)
			}
		}
	} else {
		log.Info("no target columns present; skipping model training")
	}

	if cfg.Storage.S3.Enabled {
		if err := shipOutputs(cfg, featPath, trainPath); err != nil {
			log.WithError(err).Warn("failed to upload outputs to S3")
		}
	}

	warns, errs := logger.Counts()
	log.WithFields(logger.Fields{
		"rows":     listings.Rows(),
		"features": len(feat.ModelColumns()),
		"warnings": warns,
		"errors":   errs,
	}).Info("pipeline run complete")
	log.LogMetric("pipeline", "listings_processed", listings.Rows(), nil)
}

// shipOutputs uploads the parquet tables and every model artifact to
// the configured bucket.
func shipOutputs(cfg *config.Config, paths ...string) error {
	ctx := context.Background()
	up, err := writer.NewUploader(ctx, cfg)
	if err != nil {
		return err
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := up.Upload(ctx, filepath.Base(p), raw, "application/octet-stream"); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(cfg.Storage.ArtifactsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(cfg.Storage.ArtifactsDir, e.Name()))
		if err != nil {
			return err
		}
		if err := up.Upload(ctx, "models/"+e.Name(), raw, "application/json"); err != nil {
			return err
		}
	}
	return nil
}
