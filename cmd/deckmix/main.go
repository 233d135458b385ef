package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	ffmpeg "github.com/csnewman/ffmpeg-go"
	"github.com/deckmix/deckmix/internal/analysis"
	"github.com/deckmix/deckmix/internal/audio"
	"github.com/deckmix/deckmix/internal/cli"
	"github.com/deckmix/deckmix/internal/logging"
	"github.com/deckmix/deckmix/internal/mix"
	"github.com/deckmix/deckmix/internal/ui"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool     `short:"v" help:"Show version information"`
	Output  string   `short:"o" default:"mix.mp3" help:"Output file, .mp3 or .wav"`
	Bpm     float64  `help:"Target tempo, overriding the playlist value"`
	Workers int      `help:"Analysis worker count (default: CPU count - 1)"`
	NoUI    bool     `name:"no-ui" help:"Plain progress bars instead of the full-screen TUI"`
	Logs    bool     `help:"Save a mix report alongside the output"`
	Inspect bool     `help:"Analyze the given audio files and print results without mixing"`
	Files   []string `arg:"" name:"files" help:"Playlist manifest (JSON), or audio files with --inspect" type:"existingfile" optional:""`
}

func main() {
	// Suppress FFmpeg info/verbose logging to keep console clean
	ffmpeg.AVLogSetLevel(ffmpeg.AVLogError)

	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("deckmix"),
		kong.Description("Automated DJ mix renderer"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input specified")
		kctx.PrintUsage(false)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cliArgs.Inspect {
		os.Exit(runInspect(cliArgs.Files))
	}

	os.Exit(runRender(ctx, cliArgs))
}

// runInspect analyzes each file and prints the results, skipping the render.
func runInspect(files []string) int {
	analyzer := analysis.NewAnalyzer()
	failed := 0

	for _, path := range files {
		mono, err := audio.DecodeFile(path, audio.AnalysisRate, audio.AnalysisChannels)
		if err != nil {
			cli.PrintError(fmt.Sprintf("cannot analyze %s: %v", path, err))
			failed++
			continue
		}

		res := analyzer.Analyze(mono)
		logging.DisplayTrackAnalysis(os.Stdout, path, audio.ReadTrackMeta(path), res)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// runRender drives the full pipeline from a playlist manifest.
func runRender(ctx context.Context, cliArgs *CLI) int {
	playlist, err := mix.LoadPlaylist(cliArgs.Files[0])
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	cfg := mix.DefaultConfig()
	cfg.TargetBPM = playlist.TargetBPM
	if cliArgs.Bpm > 0 {
		cfg.TargetBPM = cliArgs.Bpm
	}
	cfg.OutputPath = cliArgs.Output
	if cliArgs.Workers > 0 {
		cfg.Workers = cliArgs.Workers
	}

	// Debug log file for pipeline decisions (stretch skips, effect fallbacks)
	debugLog, _ := os.Create("deckmix-debug.log")
	defer debugLog.Close()
	cfg.Logf = func(format string, args ...any) {
		if debugLog != nil {
			fmt.Fprintf(debugLog, format+"\n", args...)
		}
	}

	entries := playlist.Entries()
	startTime := time.Now()

	var result *mix.Result
	if cliArgs.NoUI {
		result, err = renderPlain(ctx, cfg, entries)
	} else {
		result, err = renderTUI(ctx, cfg, entries)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			cli.PrintWarning("render canceled")
		} else {
			cli.PrintError(err.Error())
		}
		return 1
	}

	for _, path := range result.Excluded {
		cli.PrintWarning(fmt.Sprintf("excluded %s (decode failed)", path))
	}

	fmt.Printf("%s %s (%.0fs of audio from %d tracks)\n",
		cli.SuccessStyle.Render("Mix rendered:"),
		result.OutputPath, result.DurationSeconds, len(result.Reports))

	if cliArgs.Logs {
		reportData := logging.MixReportData{
			TargetBPM: cfg.TargetBPM,
			Result:    result,
			StartTime: startTime,
			EndTime:   time.Now(),
		}
		if err := logging.GenerateReport(reportData); err != nil {
			cli.PrintWarning(fmt.Sprintf("failed to write mix report: %v", err))
		}
	}

	return 0
}

// renderTUI runs the render behind the full-screen Bubbletea interface.
// Quitting the UI cancels the render; the outcome channel guarantees the
// goroutine has finished before the result is read.
func renderTUI(ctx context.Context, cfg mix.Config, entries []mix.PlaylistEntry) (*mix.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(len(entries), cfg.OutputPath)
	p := tea.NewProgram(model, tea.WithAltScreen())

	cfg.Progress = func(stage string, percent int, detail string) {
		p.Send(ui.StageMsg{Stage: stage, Percent: percent, Detail: detail})
	}
	cfg.OnExclude = func(path string, err error) {
		p.Send(ui.TrackExcludedMsg{Path: path, Err: err})
	}

	type outcome struct {
		result *mix.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := mix.Render(ctx, cfg, entries)
		done <- outcome{result, err}
		p.Send(ui.RenderCompleteMsg{Result: result, Err: err})
	}()

	_, runErr := p.Run()

	// The user may have quit before the render finished
	cancel()
	out := <-done

	if runErr != nil {
		return nil, fmt.Errorf("terminal UI failed: %w", runErr)
	}
	return out.result, out.err
}

// renderPlain runs the render behind simple stage progress bars.
func renderPlain(ctx context.Context, cfg mix.Config, entries []mix.PlaylistEntry) (*mix.Result, error) {
	progress := mpb.New(mpb.WithWidth(64))

	stages := []string{mix.StageAnalyzing, mix.StageStretching, mix.StageMixing, mix.StageExporting}
	bars := make(map[string]*mpb.Bar, len(stages))
	for _, stage := range stages {
		bars[stage] = progress.AddBar(100,
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("%-11s", stage)),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
			),
		)
	}

	cfg.Progress = func(stage string, percent int, detail string) {
		if bar := bars[stage]; bar != nil {
			bar.SetCurrent(int64(percent))
		}
	}
	cfg.OnExclude = func(path string, err error) {
		cli.PrintWarning(fmt.Sprintf("excluding %s: %v", path, err))
	}

	result, err := mix.Render(ctx, cfg, entries)

	for _, bar := range bars {
		if err != nil {
			bar.Abort(true)
		} else {
			bar.SetCurrent(100)
		}
	}
	progress.Wait()

	return result, err
}
