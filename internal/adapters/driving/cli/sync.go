package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driving"
)

// defaultPollInterval matches how often the rendering UI polls a job.
const defaultPollInterval = 5 * time.Second

var syncCmd = &cobra.Command{
	Use:   "sync [file-id] [page-node-id...]",
	Short: "Cache the frames under the given pages",
	Long: `Fingerprints every frame under the given page nodes and queues the
stale ones for rendering. Prints {"jobId", "assetsToUpdate"}; jobId is
null when every frame is already cached.

With --wait, polls the job until it completes or fails.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSync,
}

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show the status of a sync job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	syncCmd.Flags().Bool("wait", false, "wait for the job to finish")
	syncCmd.Flags().Duration("poll-interval", defaultPollInterval, "how often to poll with --wait")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	result, err := svc.Sync.Sync(cmd.Context(), args[0], args[1:])
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if err := printJSON(cmd, result); err != nil {
		return err
	}

	wait, _ := cmd.Flags().GetBool("wait")
	if !wait || result.JobID == "" {
		return nil
	}

	interval, _ := cmd.Flags().GetDuration("poll-interval")
	job, err := waitForJob(cmd.Context(), svc.Sync, result.JobID, interval)
	if err != nil {
		return err
	}
	if err := printJSON(cmd, job); err != nil {
		return err
	}
	if job.Status == domain.JobFailed {
		return fmt.Errorf("job %s failed: %s", job.JobID, job.Error)
	}
	return nil
}

// waitForJob polls until the job reaches a terminal status.
func waitForJob(ctx context.Context, syncSvc driving.SyncService, jobID string, interval time.Duration) (*domain.SyncJob, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := syncSvc.JobStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	job, err := svc.Sync.JobStatus(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, job)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
