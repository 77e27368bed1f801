package config

import "fmt"

// Error reports a configuration problem: a bad or missing field in a
// headless file or strip file, or an invalid flag value. Runs never start
// with one of these outstanding.
type Error struct {
	Source string // file path or "flags"
	Field  string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("config %s: %v", e.Source, e.Err)
	case e.Source == "":
		return fmt.Sprintf("config field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: field %q: %v", e.Source, e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
