// Package version exposes the release of the plataforma.
package version

import (
	_ "embed" // for go:embed
	"strconv"
	"strings"
)

// VERSION holds the server's version
//
//go:embed VERSION
var VERSION string

// Name is shown in the startup banner
const Name = "Plataforma Web"

// Version segments
var (
	MAJOR int
	MINOR int
	FIX   int
	PRE   int
)

func init() {
	VERSION = strings.TrimSpace(VERSION)
	MAJOR, MINOR, FIX, PRE = parse(VERSION)
}

// parse splits MAJOR.MINOR.FIX[-prN]; missing segments are zero
func parse(v string) (major, minor, fix, pre int) {
	core, preRelease, _ := strings.Cut(v, "-")
	segs := strings.SplitN(core, ".", 3)
	nums := make([]int, 3)
	for i, s := range segs {
		nums[i], _ = strconv.Atoi(s)
	}
	if preRelease != "" {
		pre, _ = strconv.Atoi(strings.TrimPrefix(preRelease, "pr"))
	}
	return nums[0], nums[1], nums[2], pre
}

// Info is the body of the version endpoint
type Info struct {
	Version string `json:"version"`
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Fix     int    `json:"fix"`
	Pre     int    `json:"pre,omitempty"`
}

// Current returns the Info of this build
func Current() Info {
	return Info{
		Version: VERSION,
		Major:   MAJOR,
		Minor:   MINOR,
		Fix:     FIX,
		Pre:     PRE,
	}
}

// Banner frames the name and version in a box of at least width columns
func Banner(width int) string {
	text := Name + " v" + VERSION
	inner := len(text) + 4
	if width-2 > inner {
		inner = width - 2
	}
	pad := inner - len(text)
	left := pad / 2
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", inner) + "+\n")
	b.WriteString("|" + strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left) + "|\n")
	b.WriteString("+" + strings.Repeat("-", inner) + "+")
	return b.String()
}
