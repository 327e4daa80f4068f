package strata

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release of the library and of the strata CLI.
var Version = strings.TrimSpace(version)
