package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#04B575")).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888")).
				Italic(true)

	helpExampleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))
)

// usageExamples close the help output. %s is the binary name.
var usageExamples = []string{
	"%s club-night.json -o club-night.mp3 --bpm 126",
	"%s warmup.json --no-ui --logs",
	"%s --inspect bassline.mp3 anthem.mp3",
}

// StyledHelpPrinter creates a custom help printer with Lipgloss styling
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		// Title and description
		sb.WriteString(helpTitleStyle.Render("Deckmix 🎧"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("Automated DJ mix renderer"))
		sb.WriteString("\n")

		// Usage, one line per mode
		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  %s [flags] <playlist.json>\n", ctx.Model.Name))
		sb.WriteString(fmt.Sprintf("  %s --inspect <audio files...>\n", ctx.Model.Name))

		writeArguments(&sb, getArguments(ctx))
		writeFlags(&sb, getFlags(ctx))

		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Examples:"))
		sb.WriteString("\n")
		for _, ex := range usageExamples {
			sb.WriteString("  ")
			sb.WriteString(helpExampleStyle.Render(fmt.Sprintf(ex, ctx.Model.Name)))
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type argument struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

func writeArguments(sb *strings.Builder, args []argument) {
	if len(args) == 0 {
		return
	}

	width := 0
	for _, arg := range args {
		width = max(width, len(arg.name))
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render("Arguments:"))
	sb.WriteString("\n")
	for _, arg := range args {
		sb.WriteString("  ")
		sb.WriteString(helpArgStyle.Render(fmt.Sprintf("%-*s", width, arg.name)))
		if arg.help != "" {
			sb.WriteString("  ")
			sb.WriteString(arg.help)
		}
		sb.WriteString("\n")
	}
}

func writeFlags(sb *strings.Builder, flags []flag) {
	if len(flags) == 0 {
		return
	}

	width := 0
	for _, f := range flags {
		width = max(width, len(f.flags))
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render("Flags:"))
	sb.WriteString("\n")
	for _, f := range flags {
		sb.WriteString("  ")
		sb.WriteString(helpFlagStyle.Render(fmt.Sprintf("%-*s", width, f.flags)))
		if f.help != "" {
			sb.WriteString("  ")
			sb.WriteString(f.help)
		}
		if f.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + f.defaultVal + ")"))
		}
		sb.WriteString("\n")
	}
}

func getArguments(ctx *kong.Context) []argument {
	var args []argument

	for _, arg := range ctx.Model.Node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}

	return args
}

func getFlags(ctx *kong.Context) []flag {
	var flags []flag

	// Always include help flag
	flags = append(flags, flag{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
	})

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue // Already added
		}

		flagStr := ""
		if f.Short != 0 {
			flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		} else {
			flagStr = fmt.Sprintf("--%s", f.Name)
		}

		if !f.IsBool() && f.PlaceHolder != "" {
			flagStr += "=" + strings.ToUpper(f.PlaceHolder)
		}

		flags = append(flags, flag{
			flags:      flagStr,
			help:       f.Help,
			defaultVal: f.FormatPlaceHolder(),
		})
	}

	return flags
}
