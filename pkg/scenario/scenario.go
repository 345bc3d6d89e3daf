// Package scenario runs scripted blocking-element sessions against a page
// and checks which elements end up inert.
//
// A scenario file holds one or more YAML documents:
//
//	name: nested dialogs
//	html: |
//	  <body><main id="m"></main><dialog id="d"></dialog></body>
//	steps:
//	  - push: "#d"
//	    expect:
//	      top: "#d"
//	      inert: ["#m"]
//	  - pop: true
//	    expect:
//	      top: none
//	      noInert: true
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrUnknownStep reports a step key the runner does not understand, or a
// step naming more than one action.
var ErrUnknownStep = errors.New("unknown step")

// Scenario is one page and the steps applied to it.
type Scenario struct {
	Name string `yaml:"name"`
	// HTML is inline markup. File names a page, relative to the scenario
	// file, or an http(s) URL. Exactly one of them is set.
	HTML  string `yaml:"html,omitempty"`
	File  string `yaml:"file,omitempty"`
	Steps []Step `yaml:"steps"`

	dir string
}

// Step applies at most one action, then checks Expect.
type Step struct {
	Push    string  `yaml:"push,omitempty"`
	Remove  string  `yaml:"remove,omitempty"`
	Pop     bool    `yaml:"pop,omitempty"`
	Destroy bool    `yaml:"destroy,omitempty"`
	Script  string  `yaml:"script,omitempty"`
	Expect  *Expect `yaml:"expect,omitempty"`
	Line    int     `yaml:"-"`
}

// Expect describes the state after a step. Selectors pierce shadow roots.
type Expect struct {
	// Top is a selector for the expected top, or "none" for an empty stack.
	Top         string   `yaml:"top,omitempty"`
	Depth       *int     `yaml:"depth,omitempty"`
	Inert       []string `yaml:"inert,omitempty"`
	Interactive []string `yaml:"interactive,omitempty"`
	NoInert     bool     `yaml:"noInert,omitempty"`
}

var stepKeys = map[string]bool{
	"push": true, "remove": true, "pop": true, "destroy": true, "script": true, "expect": true,
}

// UnmarshalYAML rejects unknown keys and steps with several actions.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %w: expected a mapping", value.Line, ErrUnknownStep)
	}
	actions := 0
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		if !stepKeys[key] {
			return fmt.Errorf("line %d: %w %q", value.Content[i].Line, ErrUnknownStep, key)
		}
		if key != "expect" {
			actions++
		}
	}
	if actions > 1 {
		return fmt.Errorf("line %d: %w: %d actions in one step", value.Line, ErrUnknownStep, actions)
	}
	type plain Step
	if err := value.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Line = value.Line
	return nil
}

// Action names what the step does, "expect" for a step that only checks.
func (s Step) Action() string {
	switch {
	case s.Push != "":
		return "push " + s.Push
	case s.Remove != "":
		return "remove " + s.Remove
	case s.Pop:
		return "pop"
	case s.Destroy:
		return "destroy"
	case s.Script != "":
		return "script"
	}
	return "expect"
}

// Parse decodes every YAML document in data.
func Parse(data []byte) ([]*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []*Scenario
	for {
		sc := new(Scenario)
		err := dec.Decode(sc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", len(out)+1, err)
		}
		if err := sc.validate(); err != nil {
			return nil, fmt.Errorf("scenario %d: %w", len(out)+1, err)
		}
		out = append(out, sc)
	}
	return out, nil
}

// Load reads a scenario file. Page files are resolved relative to it.
func Load(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenarios, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, sc := range scenarios {
		sc.dir = filepath.Dir(path)
		if sc.Name == "" {
			sc.Name = filepath.Base(path)
		}
	}
	return scenarios, nil
}

func (sc *Scenario) validate() error {
	switch {
	case sc.HTML == "" && sc.File == "":
		return errors.New("one of html or file is required")
	case sc.HTML != "" && sc.File != "":
		return errors.New("html and file are mutually exclusive")
	}
	return nil
}
