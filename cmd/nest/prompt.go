package main

import (
	"github.com/charmbracelet/huh"
)

// prompter asks the user questions. The interactive editor only talks to
// the terminal through it.
type prompter interface {
	Select(title string, options []string) (string, error)
	Input(title, placeholder string, validate func(string) error) (string, error)
	Confirm(title string) (bool, error)
}

// huhPrompter prompts with huh fields on the terminal.
type huhPrompter struct{}

func (huhPrompter) Select(title string, options []string) (string, error) {
	var choice string
	err := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&choice).
		Run()
	return choice, err
}

func (huhPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if validate != nil {
		field = field.Validate(validate)
	}
	err := field.Run()
	return value, err
}

func (huhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
