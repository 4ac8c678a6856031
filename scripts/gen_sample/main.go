package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Generates a delimited sample input file, optionally laced with the
// malformed rows the parser is expected to report: blank lines, repeated
// headers, missing columns and extra delimiters.
func main() {
	out := flag.String("out", "data/input_data.txt", "Output file path")
	rows := flag.Int("rows", 100000, "Number of data rows")
	columns := flag.Int("columns", 4, "Number of columns")
	delimiter := flag.String("delimiter", "%", "Field delimiter")
	anomalies := flag.Bool("anomalies", true, "Inject malformed rows")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	if *columns <= 0 || *rows <= 0 {
		slog.Error("rows and columns must be positive")
		os.Exit(1)
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create output directory", "error", err)
			os.Exit(1)
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("Failed to create output file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	rng := rand.New(rand.NewSource(*seed))
	tokens := []string{"alpha", "beta", "gamma", "delta", "sigma", "lambda", "omega", "theta"}

	header := make([]string, *columns)
	for i := range header {
		header[i] = fmt.Sprintf("field_%d", i+1)
	}
	headerLine := strings.Join(header, *delimiter)
	fmt.Fprintln(w, headerLine)

	slog.Info("Generating sample input", "path", *out, "rows", *rows, "columns", *columns)
	start := time.Now()

	for i := 1; i <= *rows; i++ {
		if *anomalies {
			switch {
			case i%970 == 0:
				fmt.Fprintln(w) // blank line, parser skips it
				continue
			case i%499 == 0:
				fmt.Fprintln(w, headerLine) // repeated header
				continue
			}
		}

		values := make([]string, *columns)
		for c := range values {
			values[c] = fmt.Sprintf("%s-%d", tokens[rng.Intn(len(tokens))], rng.Intn(10000))
		}

		if *anomalies {
			switch {
			case i%317 == 0:
				values = values[:len(values)-1] // short row
			case i%211 == 0:
				// extra delimiter inside the last column
				values[len(values)-1] = values[len(values)-1] + *delimiter + "trailing"
			}
		}

		fmt.Fprintln(w, strings.Join(values, *delimiter))

		if i%100000 == 0 {
			fmt.Printf("\rWriting rows: %d/%d", i, *rows)
		}
	}
	if *rows >= 100000 {
		fmt.Println()
	}

	if err := w.Flush(); err != nil {
		slog.Error("Flush failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Sample file ready", "path", *out, "duration", time.Since(start))
}
