// cmd/tools/artifact-check/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"credit-risk-workers/internal/artifacts"
	"credit-risk-workers/internal/common/config"
	"credit-risk-workers/internal/common/database"
	"credit-risk-workers/internal/common/logger"
	"credit-risk-workers/internal/models"
	"credit-risk-workers/internal/pipeline"
	"credit-risk-workers/pkg/registry"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	scoreCmd := flag.NewFlagSet("score", flag.ExitOnError)
	publishCmd := flag.NewFlagSet("publish", flag.ExitOnError)
	catalogCmd := flag.NewFlagSet("catalog", flag.ExitOnError)

	validateDir := validateCmd.String("dir", "artifacts", "Directory holding the artifact files")

	scoreDir := scoreCmd.String("dir", "artifacts", "Directory holding the artifact files")
	age := scoreCmd.Int("age", 35, "Applicant age (18-80)")
	sex := scoreCmd.String("sex", "male", "male or female")
	job := scoreCmd.Int("job", 2, "Job level (0-3)")
	housing := scoreCmd.String("housing", "own", "own, rent or free")
	saving := scoreCmd.String("saving", "little", "little, moderate, rich or quite_rich")
	checking := scoreCmd.String("checking", "little", "little, moderate or quite_rich")
	amount := scoreCmd.Float64("amount", 1000, "Credit amount")
	duration := scoreCmd.Int("duration", 12, "Duration in months (1-72)")

	publishDir := publishCmd.String("dir", "artifacts", "Directory holding the artifact files")
	target := publishCmd.String("target", config.ArtifactSourceRedis, "Target store: redis or postgres")
	configPath := publishCmd.String("config", "", "Config file with database settings (defaults to configs/)")

	registryPath := catalogCmd.String("path", "configs/activity-registry.json", "Path to activity registry")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	log := newLogger()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validate(ctx, *validateDir, log); err != nil {
			fail(err)
		}

	case "score":
		scoreCmd.Parse(os.Args[2:])
		rec := models.ApplicantRecord{
			Age:             *age,
			Sex:             models.Sex(models.NormalizeLabel(*sex)),
			JobLevel:        *job,
			Housing:         models.Housing(models.NormalizeLabel(*housing)),
			SavingAccounts:  models.SavingAccounts(models.NormalizeLabel(*saving)),
			CheckingAccount: models.CheckingAccount(models.NormalizeLabel(*checking)),
			CreditAmount:    *amount,
			Duration:        *duration,
		}
		if err := score(ctx, *scoreDir, rec, log); err != nil {
			fail(err)
		}

	case "publish":
		publishCmd.Parse(os.Args[2:])
		if err := publish(ctx, *publishDir, *target, *configPath, log); err != nil {
			fail(err)
		}

	case "catalog":
		catalogCmd.Parse(os.Args[2:])
		if err := catalog(*registryPath); err != nil {
			fail(err)
		}

	default:
		help()
		os.Exit(1)
	}
}

func catalog(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Activity registry v%s (updated %s)\n", reg.Version, reg.LastUpdated)
	for _, a := range reg.Activities {
		fmt.Printf("  %-20s timeout=%-5s retries=%d errors=%v\n", a.TaskType, a.Timeout, a.Retries, a.ErrorCodes)
	}
	return nil
}

func validate(ctx context.Context, dir string, log logger.Logger) error {
	bundle, err := artifacts.Load(ctx, artifacts.NewFileStore(dir), log)
	if err != nil {
		return err
	}

	fmt.Printf("Artifacts in %s are valid\n", dir)
	for _, f := range models.CategoricalFeatures {
		fmt.Printf("  %-18s %v\n", f, bundle.Registry.Labels(f))
	}
	fmt.Printf("  model: %s, %d trees, classes %v\n",
		bundle.Ensemble.Estimator(), bundle.Ensemble.TreeCount(), bundle.Ensemble.Classes())
	return nil
}

func score(ctx context.Context, dir string, rec models.ApplicantRecord, log logger.Logger) error {
	bundle, err := artifacts.Load(ctx, artifacts.NewFileStore(dir), log)
	if err != nil {
		return err
	}

	assessment, err := pipeline.New(bundle.Registry, bundle.Ensemble).Assess(ctx, rec)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string]interface{}{
		"verdict":       assessment.Verdict,
		"riskLabel":     assessment.Verdict.DisplayLabel(),
		"classLabel":    assessment.ClassLabel,
		"probabilities": bundle.Ensemble.PredictProba(assessment.Vector),
		"featureVector": assessment.Vector.Named(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// publish validates the local artifacts, then copies them into a shared store.
func publish(ctx context.Context, dir, target, configPath string, log logger.Logger) error {
	local := artifacts.NewFileStore(dir)
	if _, err := artifacts.Load(ctx, local, log); err != nil {
		return fmt.Errorf("refusing to publish: %w", err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var (
		writer artifacts.Writer
		desc   string
	)
	switch target {
	case config.ArtifactSourceRedis:
		rdb := database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			return err
		}
		store := artifacts.NewRedisStore(rdb, cfg.Artifacts.KeyPrefix)
		writer, desc = store, store.Describe()

	case config.ArtifactSourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		store, err := artifacts.NewPostgresStore(pg, cfg.Artifacts.Table)
		if err != nil {
			return err
		}
		writer, desc = store, store.Describe()

	default:
		return fmt.Errorf("unknown target %q", target)
	}

	for _, name := range artifacts.Names() {
		payload, err := local.Fetch(ctx, name)
		if err != nil {
			return err
		}
		if err := writer.Put(ctx, name, payload); err != nil {
			return err
		}
		fmt.Printf("Published %s to %s\n", name, desc)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newLogger() logger.Logger {
	log, err := logger.NewStructured("warn", "console", "stderr")
	if err != nil {
		return logger.NewNoOpLogger()
	}
	return log
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func help() {
	fmt.Println("Usage: artifact-check <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  validate   Load every artifact in -dir and check encoder alignment")
	fmt.Println("  score      Run one applicant through the local artifacts")
	fmt.Println("  publish    Copy validated artifacts into the redis or postgres store")
	fmt.Println("  catalog    Validate and list the activity registry")
}
