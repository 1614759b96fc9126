package excel

import (
	"bytes"
	"context"

	"github.com/klytics/xlkit/internal/formats/xlsx"
	"github.com/klytics/xlkit/internal/registry"
)

func headSpec() registry.CommandSpec {
	return registry.CommandSpec{
		Name:    "head",
		Summary: "Print the first rows of a sheet as CSV",
		Description: `Prints the header row and the first N data rows of a worksheet as CSV.
The first sheet is used unless --sheet names another one.`,
		Args: []registry.ArgSpec{fileArg},
		Options: []registry.OptionSpec{
			{Name: "sheet", Shorthand: "s", Summary: "Sheet to read (default: first sheet)", Type: registry.String},
			{Name: "rows", Shorthand: "n", Summary: "Number of data rows to print", Type: registry.Int, Default: 10},
			{Name: "no-header", Summary: "Omit the header row", Type: registry.Flag},
			passwordOption,
		},
		Handler: runHead,
	}
}

func runHead(_ context.Context, inv *registry.Invocation) registry.Result {
	path := inv.Args.Arg(0)
	if err := checkWorkbookPath("head", path); err != nil {
		return registry.FromError(err)
	}
	rows := inv.Args.Int("rows")
	if rows <= 0 {
		return registry.Failuref("--rows must be a positive number, got %d", rows)
	}

	wb, err := xlsx.ReadFile(path, xlsx.Options{Password: inv.Args.String("password")})
	if err != nil {
		return registry.FromError(err)
	}
	var sheet *xlsx.Sheet
	if name := inv.Args.String("sheet"); name != "" {
		sheet, err = wb.GetSheet(name)
	} else {
		sheet, err = wb.First()
	}
	if err != nil {
		return registry.FromError(err)
	}

	from, n := 0, rows+1
	if inv.Args.Bool("no-header") {
		from, n = 1, rows
	}

	var buf bytes.Buffer
	if err := sheet.WriteCSV(&buf, from, n); err != nil {
		return registry.FromError(err)
	}
	return registry.Success(buf.String())
}
