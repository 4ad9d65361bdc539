// Package logging routes the standard logger through a level filter.
// Messages carry their level in brackets: log.Printf("[DEBUG] ...").
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/hashicorp/logutils"
)

// Levels known to the filter, lowest first.
var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

// Setup makes the standard logger drop messages below level and write the
// rest to w.
func Setup(level string, w io.Writer) (*logutils.LevelFilter, error) {
	minLevel := logutils.LogLevel(strings.ToUpper(level))
	known := false
	for _, l := range Levels {
		if l == minLevel {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("logging: unknown level %q", level)
	}
	filter := &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: minLevel,
		Writer:   w,
	}
	log.SetOutput(filter)
	return filter, nil
}
