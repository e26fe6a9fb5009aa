// Package prompt reads form input from a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoInput is returned when the input ends before an answer was read.
var ErrNoInput = errors.New("no input")

// Choice is the answer to the resume question.
type Choice int

const (
	// ChoiceContinue resumes the stored session.
	ChoiceContinue Choice = iota + 1
	// ChoiceStartNew drops the stored session.
	ChoiceStartNew
)

// Option is one entry of a selection list.
type Option struct {
	Value string
	Label string
}

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// ResumeChoice asks whether to continue the unfinished form. It repeats
// the question until the answer is recognized.
func (p *Prompter) ResumeChoice() (Choice, error) {
	for {
		fmt.Fprint(p.out, "You have an unfinished form. [c]ontinue or [s]tart new? ")
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		switch strings.ToLower(line) {
		case "c", "continue":
			return ChoiceContinue, nil
		case "s", "start", "start new", "new":
			return ChoiceStartNew, nil
		}
		fmt.Fprintln(p.out, "Please answer c or s.")
	}
}

// Field asks for one value. An empty answer keeps def.
func (p *Prompter) Field(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Select prints options numbered from 1 and returns the value of the
// chosen one. The answer may be the number or the value itself. An empty
// answer keeps def when def is one of the values.
func (p *Prompter) Select(label string, options []Option, def string) (string, error) {
	if len(options) == 0 {
		return p.Field(label, def)
	}
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o.Label)
	}
	for {
		answer, err := p.Field(label, def)
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1].Value, nil
		}
		for _, o := range options {
			if strings.EqualFold(o.Value, answer) {
				return o.Value, nil
			}
		}
		fmt.Fprintf(p.out, "Please pick 1-%d.\n", len(options))
	}
}

// Confirm asks a yes/no question; only y or yes is a yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
