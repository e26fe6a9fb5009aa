package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func newPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestResumeChoice(t *testing.T) {
	tests := []struct {
		input string
		want  Choice
	}{
		{"c\n", ChoiceContinue},
		{"Continue\n", ChoiceContinue},
		{"s\n", ChoiceStartNew},
		{"maybe\nnew\n", ChoiceStartNew},
	}
	for _, tt := range tests {
		p, _ := newPrompter(tt.input)
		got, err := p.ResumeChoice()
		if err != nil {
			t.Fatalf("ResumeChoice(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ResumeChoice(%q) = %v; want %v", tt.input, got, tt.want)
		}
	}
}

func TestResumeChoice_Reprompts(t *testing.T) {
	p, out := newPrompter("x\nc\n")
	if _, err := p.ResumeChoice(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Please answer c or s.") {
		t.Errorf("output %q lacks the retry hint", out.String())
	}
}

func TestResumeChoice_EOF(t *testing.T) {
	p, _ := newPrompter("")
	if _, err := p.ResumeChoice(); err != ErrNoInput {
		t.Errorf("err = %v; want ErrNoInput", err)
	}
}

func TestField_Default(t *testing.T) {
	p, out := newPrompter("\nBob\n")

	got, err := p.Field("Name", "Ann")
	if err != nil || got != "Ann" {
		t.Errorf("Field = %q, %v; want Ann", got, err)
	}
	if !strings.Contains(out.String(), "Name [Ann]: ") {
		t.Errorf("output %q lacks the default", out.String())
	}

	got, err = p.Field("Name", "Ann")
	if err != nil || got != "Bob" {
		t.Errorf("Field = %q, %v; want Bob", got, err)
	}
}

func TestSelect(t *testing.T) {
	opts := []Option{{Value: "CA", Label: "California"}, {Value: "NY", Label: "New York"}}

	p, _ := newPrompter("2\n")
	if got, _ := p.Select("State", opts, ""); got != "NY" {
		t.Errorf("Select by number = %q; want NY", got)
	}

	p, _ = newPrompter("ca\n")
	if got, _ := p.Select("State", opts, ""); got != "CA" {
		t.Errorf("Select by value = %q; want CA", got)
	}

	p, out := newPrompter("7\n1\n")
	if got, _ := p.Select("State", opts, ""); got != "CA" {
		t.Errorf("Select after retry = %q; want CA", got)
	}
	if !strings.Contains(out.String(), "Please pick 1-2.") {
		t.Errorf("output %q lacks the retry hint", out.String())
	}
}

func TestSelect_NoOptionsFallsBackToField(t *testing.T) {
	p, _ := newPrompter("Springfield\n")
	if got, _ := p.Select("City", nil, ""); got != "Springfield" {
		t.Errorf("Select = %q; want Springfield", got)
	}
}

func TestConfirm(t *testing.T) {
	p, _ := newPrompter("y\n\nno\n")
	for _, want := range []bool{true, false, false} {
		got, err := p.Confirm("Pay now?")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Confirm = %v; want %v", got, want)
		}
	}
}
