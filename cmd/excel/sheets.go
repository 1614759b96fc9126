package excel

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/klytics/xlkit/internal/formats/xlsx"
	"github.com/klytics/xlkit/internal/registry"
)

func sheetsSpec() registry.CommandSpec {
	return registry.CommandSpec{
		Name:        "sheets",
		Summary:     "List the worksheets of a workbook",
		Description: "Lists worksheet names in workbook order. With --counts, also reads every sheet and reports its non-empty row count.",
		Args:        []registry.ArgSpec{fileArg},
		Options: []registry.OptionSpec{
			{Name: "counts", Shorthand: "c", Summary: "Include non-empty row counts", Type: registry.Flag},
			passwordOption,
		},
		Handler: runSheets,
	}
}

func runSheets(_ context.Context, inv *registry.Invocation) registry.Result {
	path := inv.Args.Arg(0)
	if err := checkWorkbookPath("sheets", path); err != nil {
		return registry.FromError(err)
	}
	opts := xlsx.Options{Password: inv.Args.String("password")}

	var buf bytes.Buffer
	if !inv.Args.Bool("counts") {
		names, err := xlsx.SheetNames(path, opts)
		if err != nil {
			return registry.FromError(err)
		}
		for _, n := range names {
			fmt.Fprintln(&buf, n)
		}
		return registry.Success(buf.String())
	}

	wb, err := xlsx.ReadFile(path, opts)
	if err != nil {
		return registry.FromError(err)
	}
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for i := range wb.Sheets {
		s := &wb.Sheets[i]
		fmt.Fprintf(tw, "%s\t%d rows\n", s.Name, s.RowCount())
	}
	tw.Flush()
	return registry.Success(buf.String())
}
