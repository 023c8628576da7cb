package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/huh"

	"github.com/ZebulonRouseFrantzich/nest/internal/platform"
	"github.com/ZebulonRouseFrantzich/nest/internal/testutil"
)

// scriptedPrompter answers prompts from a fixed script. Select and Input
// take strings, Confirm takes bools. A prompt past the end of the script
// aborts like Ctrl+C would, and fails the test unless abortWhenDone is set.
type scriptedPrompter struct {
	t             *testing.T
	answers       []interface{}
	titles        []string
	abortWhenDone bool
}

func (p *scriptedPrompter) next(title string) (interface{}, bool) {
	p.titles = append(p.titles, title)
	if len(p.answers) == 0 {
		if !p.abortWhenDone {
			p.t.Errorf("unexpected prompt %q: script exhausted", title)
		}
		return nil, false
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, true
}

func (p *scriptedPrompter) Select(title string, options []string) (string, error) {
	answer, ok := p.next(title)
	if !ok {
		return "", huh.ErrUserAborted
	}
	choice, isString := answer.(string)
	if !isString || !slices.Contains(options, choice) {
		p.t.Errorf("prompt %q: answer %v not in options %v", title, answer, options)
		return "", huh.ErrUserAborted
	}
	return choice, nil
}

func (p *scriptedPrompter) Input(title, _ string, validate func(string) error) (string, error) {
	answer, ok := p.next(title)
	if !ok {
		return "", huh.ErrUserAborted
	}
	value, isString := answer.(string)
	if !isString {
		p.t.Errorf("prompt %q: want string answer, got %T", title, answer)
		return "", huh.ErrUserAborted
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return "", fmt.Errorf("prompt %q rejected %q: %w", title, value, err)
		}
	}
	return value, nil
}

func (p *scriptedPrompter) Confirm(title string) (bool, error) {
	answer, ok := p.next(title)
	if !ok {
		return false, huh.ErrUserAborted
	}
	yes, isBool := answer.(bool)
	if !isBool {
		p.t.Errorf("prompt %q: want bool answer, got %T", title, answer)
		return false, huh.ErrUserAborted
	}
	return yes, nil
}

// done fails the test if scripted answers were left unused.
func (p *scriptedPrompter) done() {
	p.t.Helper()
	if len(p.answers) != 0 {
		p.t.Errorf("unused answers: %v (prompts seen: %v)", p.answers, p.titles)
	}
}

// newTestApp isolates the test in a temp environment and returns an app
// with the given prompt script.
func newTestApp(t *testing.T, answers ...interface{}) (*app, *testutil.Env, *scriptedPrompter) {
	t.Helper()
	env := testutil.SetupTestEnv(t)
	a, p := testApp(t, answers...)
	return a, env, p
}

// testApp returns a fresh app in the current environment with a fixed linux
// platform.
func testApp(t *testing.T, answers ...interface{}) (*app, *scriptedPrompter) {
	t.Helper()
	p := &scriptedPrompter{t: t, answers: answers}
	a := newApp()
	a.prompter = p
	a.detector = platform.Static{Info: &platform.Info{OS: "linux", Arch: "amd64", Hostname: "testhost"}}
	return a, p
}

// runNest executes the command line against a and returns stdout.
func runNest(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// nest runs args with a fresh app in the current environment, failing the
// test on error.
func nest(t *testing.T, args ...string) string {
	t.Helper()
	a, _ := testApp(t)
	out, err := runNest(t, a, args...)
	if err != nil {
		t.Fatalf("nest %v: %v\n%s", args, err, out)
	}
	return out
}

func writeSettings(t *testing.T, env *testutil.Env, lua string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(env.ConfigDir, "nest.lua"), []byte(lua), 0o644); err != nil {
		t.Fatalf("failed to write nest.lua: %v", err)
	}
}
