// Command numspeak spells numbers and arithmetic expressions in English words.
//
//	numspeak -system indian 1234567
//	echo "100000×12" | numspeak -mode calc -system indian
//
// Arguments are converted one per line. With no arguments each line of
// standard input is converted.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/remiges-tech/numspeak/calc"
	"github.com/remiges-tech/numspeak/numwords"
	"github.com/remiges-tech/numspeak/transcript"
)

// Conversion modes.
const (
	modeWords   = "words"
	modeExpr    = "expr"
	modeFormat  = "format"
	modeCalc    = "calc"
	modeTriplet = "triplet"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "numspeak:", err)
		}
		os.Exit(2)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("numspeak", flag.ContinueOnError)
	fs.SetOutput(stderr)
	systemName := fs.String("system", "international", "Number system: international or indian")
	mode := fs.String("mode", modeWords, "Conversion: words, expr, format, calc or triplet")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	system, ok := numwords.ParseSystem(*systemName)
	if !ok {
		return fmt.Errorf("unknown number system %q", *systemName)
	}
	convert, err := converter(*mode, system)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	if fs.NArg() > 0 {
		for _, arg := range fs.Args() {
			fmt.Fprintln(out, convert(arg))
		}
		return nil
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fmt.Fprintln(out, convert(line))
	}
	return scanner.Err()
}

func converter(mode string, system numwords.System) (func(string) string, error) {
	switch mode {
	case modeWords:
		return func(s string) string {
			if words := numwords.NumberToWords(s, system); words != "" {
				return words
			}
			return numwords.ErrorToken
		}, nil
	case modeExpr:
		return func(s string) string { return transcript.Live(s, system).Words }, nil
	case modeFormat:
		return func(s string) string { return numwords.FormatNumberWithCommas(s, system) }, nil
	case modeCalc:
		return func(s string) string {
			t := transcript.Build(s, system, calc.Evaluator{})
			return t.Display + "\n" + t.Words
		}, nil
	case modeTriplet:
		return func(s string) string {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 999 {
				return numwords.ErrorToken
			}
			return numwords.SpellTriplet(n)
		}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}
