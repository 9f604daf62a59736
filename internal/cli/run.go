package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/whcollect/whcollect/internal/config"
	"github.com/whcollect/whcollect/internal/pathutil"
	"github.com/whcollect/whcollect/internal/pipeline"
	"github.com/whcollect/whcollect/internal/progress"
)

// buildConfig merges defaults, the config file, and flags into one run
// config. Precedence: flags > config file > defaults.
func buildConfig(args []string) (*config.Config, error) {
	cfg := config.Default()
	cfg.Username = args[0]
	cfg.Collections = args[1:]

	path := cfgFile
	if path == "" {
		path, _ = config.DefaultFilePath()
	}
	if path != "" {
		fc, err := config.LoadFile(path)
		switch {
		case err == nil:
			fc.Apply(cfg)
		case cfgFile != "":
			// An explicitly named config file must load.
			return nil, err
		}
	}

	if apiBaseURL != "" {
		cfg.APIBaseURL = apiBaseURL
	}
	if destination != "" {
		cfg.SaveDir = destination
	}
	saveDir, err := pathutil.ResolveDestination(cfg.SaveDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}
	cfg.SaveDir = saveDir
	if flat {
		cfg.Flat = true
	}
	if keyInQuery {
		cfg.KeyInQuery = true
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if timeoutSecs > 0 {
		cfg.RequestTimeout = time.Duration(timeoutSecs) * time.Second
	}

	key, source := config.ResolveAPIKeySource(apiKey)
	switch {
	case source == "flag" || source == "token-file":
		cfg.APIKey = key
	case cfg.APIKey != "":
		// Already set from the config file named by --config.
		source = "config-file"
	default:
		cfg.APIKey = key
	}
	if cfg.APIKey != "" {
		logger.Debug().Str("source", source).Msg("API key resolved")
	} else {
		logger.Warn().Msg("No API key found; private collections will not be visible")
	}

	return cfg, nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args)
	if err != nil {
		return err
	}

	orch, err := pipeline.NewOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	ctx := GetContext()

	if dryRun {
		return runDryRun(ctx, orch)
	}

	ui := progress.NewDownloadUI()
	// Log lines render above the bar instead of tearing it.
	logger.SetOutput(ui.Writer())
	defer logger.SetOutput(os.Stderr)

	orch.OnPage = func(collection string, page, lastPage, assets int) {
		ui.AddTotal(assets)
	}
	orch.OnTaskDone = func(task pipeline.Task, err error) {
		ui.TaskDone(err)
	}

	report, runErr := orch.Run(ctx)
	ui.Finish()

	if report != nil {
		printReport(report)
	}
	if runErr != nil {
		return runErr
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", report.Failed, report.Total())
	}
	return nil
}

// runDryRun enumerates every task the run would execute and prints a
// per-directory summary instead of downloading.
func runDryRun(ctx context.Context, orch *pipeline.Orchestrator) error {
	scan := progress.NewScanProgress()
	orch.OnPage = scan.PageScanned

	tasks, err := orch.Enumerate(ctx)
	scan.Finish()
	if err != nil {
		return err
	}

	var dirs []string
	byDir := make(map[string]int)
	for _, task := range tasks {
		if _, seen := byDir[task.DestDir]; !seen {
			dirs = append(dirs, task.DestDir)
		}
		byDir[task.DestDir]++
	}

	fmt.Printf("Would download %d files:\n", len(tasks))
	for _, dir := range dirs {
		fmt.Printf("  %s: %d files\n", dir, byDir[dir])
	}
	fmt.Println("Remove --dry-run to perform the download.")
	return nil
}

func printReport(r *pipeline.Report) {
	fmt.Printf("Downloaded %d of %d files\n", r.Downloaded, r.Total())
	if r.Failed > 0 {
		fmt.Printf("Failed (%d):\n", r.Failed)
		for _, te := range r.Errors {
			fmt.Printf("  %s: %v\n", te.Task.Locator, te.Err)
		}
	}
}
