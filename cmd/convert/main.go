package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"rowforge/internal/convert"
	"rowforge/internal/exporter"
	"rowforge/internal/i18n"
)

var version = "dev"

func main() {
	// Custom Usage/Help Message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "RowForge Converter %s\n\n", version)
		fmt.Fprintf(os.Stderr, "Converts %%-delimited research text files into spreadsheet formats.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  rowforge [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  rowforge -input data/input_data.txt -output data/output_data.xlsx -columns 8\n")
	}

	var (
		inputPath   = flag.String("input", "", "Input text file path")
		outputPath  = flag.String("output", "", "Output file path")
		columns     = flag.Int("columns", 0, "Expected number of columns per row")
		tolerate    = flag.Bool("tolerate-extra", false, "Fold extra delimiters into the last column")
		format      = flag.String("format", "", "Output format: excel, csv, json, pdf (default inferred as excel)")
		delimiter   = flag.String("delimiter", "", "Field delimiter (default \"%\")")
		lang        = flag.String("lang", "en", "Report language: en, es, fa")
		quiet       = flag.Bool("quiet", false, "Suppress output, use exit code only")
		showVersion = flag.Bool("version", false, "Show version")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("RowForge Converter %s\n", version)
		os.Exit(0)
	}

	if *inputPath == "" || *outputPath == "" || *columns == 0 {
		fmt.Fprintln(os.Stderr, "All fields must be filled out.")
		flag.Usage()
		os.Exit(2)
	}
	if *columns <= 0 {
		fmt.Fprintln(os.Stderr, "Number of columns must be a positive integer.")
		os.Exit(2)
	}
	if *format != "" && !exporter.ValidFormat(*format) {
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *format)
		os.Exit(2)
	}
	if !i18n.Known(*lang) {
		fmt.Fprintf(os.Stderr, "Unsupported language: %s\n", *lang)
		os.Exit(2)
	}

	records, report := convert.Run(context.Background(), convert.Request{
		InputPath:               *inputPath,
		OutputPath:              *outputPath,
		Columns:                 *columns,
		TolerateExtraDelimiters: *tolerate,
		Format:                  *format,
		Delimiter:               *delimiter,
	})

	if !*quiet {
		if msgs := report.Messages(); len(msgs) > 0 {
			fmt.Println(i18n.T(*lang, "report.title"))
			for _, msg := range msgs {
				fmt.Println(msg)
			}
			fmt.Println()
		}

		if records != nil {
			fmt.Println(i18n.T(*lang, "report.success"))
			fmt.Println(i18n.Tf(*lang, "report.records", records.Len()))
		} else {
			fmt.Println(i18n.T(*lang, "report.failure"))
		}
	}

	if records == nil {
		os.Exit(1)
	}
}
