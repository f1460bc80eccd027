// Package theme defines the color palettes for the roomwise dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps dashboard roles to colors. Surface roles draw panels, text
// roles draw labels and values, signal roles shade money moving the right or
// wrong way, and category roles color each account category consistently.
type Theme struct {
	Name string

	Background    lipgloss.Color
	Surface       lipgloss.Color // cards
	SurfaceHover  lipgloss.Color // active tab
	SurfaceBright lipgloss.Color // selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color

	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Key          lipgloss.Color // key hints in help

	Gain    lipgloss.Color
	Caution lipgloss.Color // room half used
	Strain  lipgloss.Color // room nearly used
	Loss    lipgloss.Color // room exceeded, errors
	Trend   lipgloss.Color // history sparklines

	Matched   lipgloss.Color
	Sheltered lipgloss.Color
	Deferred  lipgloss.Color
	Taxable   lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default: warm ink on dark paper.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Key:           lipgloss.Color("#24837B"),
	Gain:          lipgloss.Color("#A3B859"),
	Caution:       lipgloss.Color("#D0A215"),
	Strain:        lipgloss.Color("#DA702C"),
	Loss:          lipgloss.Color("#D14D41"),
	Trend:         lipgloss.Color("#24837B"),
	Matched:       lipgloss.Color("#CE5D97"),
	Sheltered:     lipgloss.Color("#879A39"),
	Deferred:      lipgloss.Color("#4385BE"),
	Taxable:       lipgloss.Color("#D0A215"),
}

// FlexokiLight is the same palette on light paper, for bright terminals.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Background:    lipgloss.Color("#FFFCF0"),
	Surface:       lipgloss.Color("#F2F0E5"),
	SurfaceHover:  lipgloss.Color("#E6E4D9"),
	SurfaceBright: lipgloss.Color("#DAD8CE"),
	Border:        lipgloss.Color("#CECDC3"),
	BorderAccent:  lipgloss.Color("#24837B"),
	TextDim:       lipgloss.Color("#B7B5AC"),
	TextMuted:     lipgloss.Color("#6F6E69"),
	TextPrimary:   lipgloss.Color("#100F0F"),
	Accent:        lipgloss.Color("#24837B"),
	AccentBright:  lipgloss.Color("#1C6C66"),
	Key:           lipgloss.Color("#205EA6"),
	Gain:          lipgloss.Color("#66800B"),
	Caution:       lipgloss.Color("#AD8301"),
	Strain:        lipgloss.Color("#BC5215"),
	Loss:          lipgloss.Color("#AF3029"),
	Trend:         lipgloss.Color("#24837B"),
	Matched:       lipgloss.Color("#A02F6F"),
	Sheltered:     lipgloss.Color("#66800B"),
	Deferred:      lipgloss.Color("#205EA6"),
	Taxable:       lipgloss.Color("#AD8301"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceHover:  lipgloss.Color("#45475A"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Key:           lipgloss.Color("#94E2D5"),
	Gain:          lipgloss.Color("#A6E3A1"),
	Caution:       lipgloss.Color("#F9E2AF"),
	Strain:        lipgloss.Color("#FAB387"),
	Loss:          lipgloss.Color("#F38BA8"),
	Trend:         lipgloss.Color("#94E2D5"),
	Matched:       lipgloss.Color("#F5C2E7"),
	Sheltered:     lipgloss.Color("#A6E3A1"),
	Deferred:      lipgloss.Color("#89B4FA"),
	Taxable:       lipgloss.Color("#F9E2AF"),
}

// Terminal uses the 16 ANSI colors so it follows the terminal's own scheme.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Key:           lipgloss.Color("6"),
	Gain:          lipgloss.Color("10"),
	Caution:       lipgloss.Color("3"),
	Strain:        lipgloss.Color("11"),
	Loss:          lipgloss.Color("1"),
	Trend:         lipgloss.Color("6"),
	Matched:       lipgloss.Color("5"),
	Sheltered:     lipgloss.Color("2"),
	Deferred:      lipgloss.Color("12"),
	Taxable:       lipgloss.Color("3"),
}

// All available themes, in the order settings lists them.
var All = []Theme{FlexokiDark, FlexokiLight, CatppuccinMocha, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Known reports whether name is a defined theme.
func Known(name string) bool {
	for _, t := range All {
		if t.Name == name {
			return true
		}
	}
	return false
}
