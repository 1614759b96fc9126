// Package excel provides the workbook commands: sheets and head.
package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klytics/xlkit/internal/registry"
)

// Specs returns the workbook commands.
func Specs() []registry.CommandSpec {
	return []registry.CommandSpec{
		sheetsSpec(),
		headSpec(),
	}
}

var workbookExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

var fileArg = registry.ArgSpec{Name: "file", Summary: "Path to the workbook (.xlsx, .xlsm, .xltx, .xltm)", Required: true}

var passwordOption = registry.OptionSpec{Name: "password", Shorthand: "p", Summary: "Password for an encrypted workbook", Type: registry.String}

func checkWorkbookPath(command, path string) error {
	if !workbookExts[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("expected an Excel workbook, got %q — use 'xlkit %s <file.xlsx>'", path, command)
	}
	return nil
}
