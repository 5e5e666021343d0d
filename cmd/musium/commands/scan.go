package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/musium/musium/internal/scanner"
)

// NewScanCommand runs a single scan cycle to completion and exits.
func NewScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the library once and exit.",
		RunE:  runScan,
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	c, err := initContainer()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	c.Scanner.Start(ctx)

	tty := isatty.IsTerminal(os.Stdout.Fd())
	var bar *pb.ProgressBar
	var barStage scanner.Stage

	lastStage := scanner.Stage("")
	for {
		status := c.Scanner.Status()
		if status.Stage != lastStage {
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			c.Logger.Info("scan: %s", status.Stage)
			lastStage = status.Stage
		}

		if tty {
			switch status.Stage {
			case scanner.StageExtractingMeta:
				bar = syncBar(bar, &barStage, status.Stage, status.FilesToProcessMetadata, status.FilesProcessedMetadata, "Extracting metadata")
			case scanner.StageAnalyzingLoudness:
				bar = syncBar(bar, &barStage, status.Stage, status.TracksToProcessLoudness, status.TracksProcessedLoudness, "Analyzing loudness")
			case scanner.StageGeneratingThumbs:
				bar = syncBar(bar, &barStage, status.Stage, status.FilesToProcessThumbnails, status.FilesProcessedThumbnails, "Generating thumbnails")
			}
		}

		if status.Stage == scanner.StageDone {
			if bar != nil {
				bar.Finish()
			}
			if status.Error != "" {
				c.Logger.Error("scan: failed: %s", status.Error)
			} else {
				c.Logger.Success("scan: complete (%d files, %d tracks loudness, %d albums loudness, %d thumbnails)",
					status.FilesDiscovered, status.TracksProcessedLoudness, status.AlbumsProcessedLoudness, status.FilesProcessedThumbnails)
			}
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// syncBar lazily starts a progress bar for stage and keeps its total/current
// in step with the scanner's own counters.
func syncBar(bar *pb.ProgressBar, barStage *scanner.Stage, stage scanner.Stage, total, current int, label string) *pb.ProgressBar {
	if bar == nil || *barStage != stage {
		if bar != nil {
			bar.Finish()
		}
		bar = pb.New(total)
		bar.SetWriter(os.Stdout)
		bar.SetTemplateString(fmt.Sprintf(`%s: {{ bar . }} {{ percent . }} | ETA {{ rtime . "%%s" }}`, label))
		bar.Start()
		*barStage = stage
	}
	bar.SetTotal(int64(total))
	bar.SetCurrent(int64(current))
	return bar
}
