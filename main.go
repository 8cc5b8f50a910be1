package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"congruent/lcg"
	"congruent/server"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

type Options struct {
	ConfigPath   string
	OutputFormat OutputFormat
	Verbose      bool
	OutputFile   string
	CompareWith  string
	Serve        string
	AssumeYes    bool
	Policy       string
	Input        lcg.RawInput
}

func main() {
	opts := parseFlags()

	config, err := lcg.LoadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if opts.Verbose {
		config.DetailedLogging = true
	}
	if opts.Policy != "" {
		config.Policy = lcg.Policy(opts.Policy)
		if err := lcg.ValidateConfig(&config); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}

	generator := lcg.NewGenerator(config)

	if opts.Serve != "" {
		srv := server.New(generator, generator.Logger().Slog())
		if err := srv.ListenAndServe(opts.Serve); err != nil {
			generator.Logger().Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	result, err := generator.Generate(opts.Input, terminalConfirm(opts.AssumeYes))
	if err != nil {
		var verr *lcg.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintln(os.Stderr, "Invalid parameters:")
			for _, p := range verr.Problems {
				fmt.Fprintf(os.Stderr, "  - %s\n", p)
			}
			os.Exit(2)
		case errors.Is(err, lcg.ErrNotConfirmed):
			fmt.Fprintln(os.Stderr, "Generation cancelled.")
			os.Exit(3)
		default:
			fmt.Fprintf(os.Stderr, "Error generating sequence: %v\n", err)
			os.Exit(1)
		}
	}

	if err := outputResults(result, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	if opts.CompareWith != "" {
		if err := compareWithExisting(os.Stdout, result, opts.CompareWith); err != nil {
			fmt.Fprintf(os.Stderr, "Error comparing results: %v\n", err)
			os.Exit(1)
		}
	}

	if !result.Report.GlobalPass {
		os.Exit(4)
	}
}

func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.Var((*outputFormatFlag)(&opts.OutputFormat), "format", "Output format (text, json, csv)")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Print every row and enable detailed logging")
	flag.StringVar(&opts.OutputFile, "output", "", "Output file path")
	flag.StringVar(&opts.CompareWith, "compare", "", "Compare with a previous JSON result")
	flag.StringVar(&opts.Serve, "serve", "", "Serve the HTTP API on this address instead of generating")
	flag.BoolVar(&opts.AssumeYes, "yes", false, "Skip the confirmation for large runs")
	flag.StringVar(&opts.Policy, "policy", "", "Modulus policy (derived, direct); overrides config")

	flag.StringVar(&opts.Input.Seed, "seed", "6", "Seed X0")
	flag.StringVar(&opts.Input.K, "k", "3", "Multiplier parameter k (a = 1 + 4k)")
	flag.StringVar(&opts.Input.G, "g", "3", "Modulus exponent g (m = 2^g), direct policy only")
	flag.StringVar(&opts.Input.C, "c", "7", "Increment c")
	flag.StringVar(&opts.Input.N, "n", "120", "Number of values N")

	flag.Parse()

	if opts.OutputFormat == "" {
		opts.OutputFormat = FormatText
	}

	return opts
}

// terminalConfirm asks on the controlling terminal. Without one, only
// -yes lets a large run proceed.
func terminalConfirm(assumeYes bool) lcg.ConfirmFunc {
	return func(n int) bool {
		if assumeYes {
			return true
		}
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			fmt.Fprintf(os.Stderr, "Refusing to generate %s values without a terminal; pass -yes.\n", humanize.Comma(int64(n)))
			return false
		}
		return promptYes(os.Stdin, os.Stderr, n)
	}
}

func promptYes(in io.Reader, out io.Writer, n int) bool {
	fmt.Fprintf(out, "You will generate %s values. Continue? [y/N] ", humanize.Comma(int64(n)))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func outputResults(result *lcg.GenerationResult, opts Options) error {
	var buf bytes.Buffer
	var err error
	switch opts.OutputFormat {
	case FormatJSON:
		err = outputJSON(&buf, result)
	case FormatCSV:
		err = outputCSV(&buf, result)
	default:
		outputText(&buf, result, opts.Verbose)
	}
	if err != nil {
		return err
	}

	if opts.OutputFile != "" {
		if err := os.WriteFile(opts.OutputFile, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.OutputFile, err)
		}
		fmt.Printf("Results saved to: %s\n", opts.OutputFile)
		return nil
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

func outputText(w io.Writer, result *lcg.GenerationResult, verbose bool) {
	p := result.Params
	fmt.Fprintf(w, "Parameters: a = %s, c = %s, m = %s (g = %d), X0 = %s, N = %s\n",
		p.A, p.C, p.M, p.G, p.X0, humanize.Comma(int64(p.N)))
	fmt.Fprintf(w, "Generated in %v\n", result.Duration)

	seq := result.Sequence
	if seq.RepeatStart >= 0 {
		fmt.Fprintf(w, "Repetition from k = %d (cycle length %d)\n", seq.RepeatStart, seq.CycleLength)
	} else {
		fmt.Fprintln(w, "No repetition within the sequence")
	}
	fmt.Fprintf(w, "Full period (Hull-Dobell): %v\n", result.Report.FullPeriod)

	if verbose {
		fmt.Fprintf(w, "\n%6s %12s %12s %8s\n", "i", "X_k", "X_k+1", "r_i")
		for _, r := range seq.Rows {
			mark := ""
			if r.Repeat {
				mark = " *"
			}
			fmt.Fprintf(w, "%6d %12s %12s %8.4f%s\n", r.Index+1, r.Current, r.Next, r.Ratio, mark)
		}
	}

	printStatisticalSummary(w, result.Report)
}

func printStatisticalSummary(w io.Writer, report lcg.Report) {
	fmt.Fprintf(w, "\nStatistical Test Results:\n")
	for _, test := range report.Tests() {
		fmt.Fprintf(w, "  %-18s %-4s %s\n", test.Name+":", passLabel(test.Passed), test.Details)
	}
	fmt.Fprintf(w, "\nOverall: %s\n", passLabel(report.GlobalPass))
	if report.Regenerate {
		fmt.Fprintln(w, "Try different parameters and regenerate.")
	}
}

func passLabel(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func outputJSON(w io.Writer, result *lcg.GenerationResult) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = w.Write(append(output, '\n'))
	return err
}

func outputCSV(w io.Writer, result *lcg.GenerationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"k", "x_k", "x_k1", "r", "repeat"}); err != nil {
		return err
	}
	for _, r := range result.Sequence.Rows {
		record := []string{
			strconv.Itoa(r.Index),
			r.Current.String(),
			r.Next.String(),
			strconv.FormatFloat(r.Ratio, 'f', 6, 64),
			strconv.FormatBool(r.Repeat),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func compareWithExisting(w io.Writer, result *lcg.GenerationResult, comparePath string) error {
	data, err := os.ReadFile(comparePath)
	if err != nil {
		return fmt.Errorf("reading comparison file: %w", err)
	}

	var existing lcg.GenerationResult
	if err := json.Unmarshal(data, &existing); err != nil {
		return fmt.Errorf("parsing comparison file: %w", err)
	}

	fmt.Fprintf(w, "\nComparison with %s:\n", comparePath)
	fmt.Fprintf(w, "%-18s %12s %12s\n", "", "New", "Existing")
	current, previous := result.Report.Tests(), existing.Report.Tests()
	for i := range current {
		fmt.Fprintf(w, "%-18s %12.6f %12.6f\n", current[i].Name+":", current[i].Statistic, previous[i].Statistic)
	}
	fmt.Fprintf(w, "%-18s %12s %12s\n", "Overall:", passLabel(result.Report.GlobalPass), passLabel(existing.Report.GlobalPass))
	return nil
}

// Custom flag type for output format
type outputFormatFlag OutputFormat

func (f *outputFormatFlag) String() string {
	return string(*f)
}

func (f *outputFormatFlag) Set(value string) error {
	switch strings.ToLower(value) {
	case "text", "json", "csv":
		*f = outputFormatFlag(strings.ToLower(value))
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", value)
	}
}
