package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestStyledHelpPrinter(t *testing.T) {
	var spec struct {
		Output  string   `short:"o" default:"mix.mp3" help:"Output file"`
		Inspect bool     `help:"Analyze without mixing"`
		Files   []string `arg:"" optional:"" help:"Playlist manifest (JSON)"`
	}

	var buf bytes.Buffer
	parser, err := kong.New(&spec,
		kong.Name("deckmix"),
		kong.Writers(&buf, &buf),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	kctx, err := parser.Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	printer := StyledHelpPrinter(kong.HelpOptions{})
	if err := printer(kong.HelpOptions{}, kctx); err != nil {
		t.Fatalf("help printer: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Usage:",
		"deckmix [flags] <playlist.json>",
		"deckmix --inspect <audio files...>",
		"Flags:",
		"-o, --output",
		"Examples:",
		"club-night.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}
