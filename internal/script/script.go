// Package script loads and runs step scripts: YAML files that connect
// databases and then execute SQL against them, checking each result.
//
// Example:
//
//	databases:
//	  - {name: db1, url: "sqlite:mem:db1"}
//	steps:
//	  - {db: db1, sql: "CREATE TABLE t (v TEXT)"}
//	  - {db: db1, sql: "INSERT INTO t VALUES ('a')", expect: "1"}
//	  - {db: db1, sql: "SELECT v FROM t", expect: "a"}
//	  - {db: db1, sql: "SELECT v FROM t WHERE 1=0", expect_null: true}
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

// Script is a parsed step script.
type Script struct {
	Path      string     `yaml:"-"`
	Databases []Database `yaml:"databases"`
	Steps     []Step     `yaml:"steps"`
}

// Database is a connection opened before the steps run.
type Database struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Driver   string `yaml:"driver"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Step executes one statement and optionally checks its outcome.
// At most one of Expect, ExpectNull and ExpectError may be set.
type Step struct {
	Name        string  `yaml:"name"`
	DB          string  `yaml:"db"`
	SQL         string  `yaml:"sql"`
	Expect      *string `yaml:"expect"`
	ExpectNull  bool    `yaml:"expect_null"`
	ExpectError string  `yaml:"expect_error"`
}

// Label names the step in reports.
func (s Step) Label(index int) string {
	switch {
	case s.Name != "":
		return fmt.Sprintf("#%d %s", index+1, s.Name)
	case s.DB != "":
		return fmt.Sprintf("#%d %s", index+1, s.DB)
	default:
		return fmt.Sprintf("#%d", index+1)
	}
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrScriptRead, err, "failed to read script").
			WithFile(path, 0)
	}

	s, err := Parse(data)
	if err != nil {
		var ae *alerr.Error
		if errors.As(err, &ae) {
			ae.WithFile(path, 0)
		}
		return nil, err
	}
	s.Path = path
	return s, nil
}

// Parse decodes and validates a script. Unknown fields are rejected.
// ${VAR} references in database URLs and credentials are expanded.
func Parse(data []byte) (*Script, error) {
	var s Script

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, alerr.Wrap(alerr.ErrScriptInvalid, err, "failed to parse script")
	}

	for i := range s.Databases {
		db := &s.Databases[i]
		db.URL = os.ExpandEnv(db.URL)
		db.Username = os.ExpandEnv(db.Username)
		db.Password = os.ExpandEnv(db.Password)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that databases and steps are complete and unambiguous.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return alerr.New(alerr.ErrScriptInvalid, "script has no steps")
	}

	seen := make(map[string]bool, len(s.Databases))
	for i, db := range s.Databases {
		switch {
		case strings.TrimSpace(db.Name) == "":
			return alerr.Newf(alerr.ErrScriptInvalid, "database #%d has no name", i+1)
		case strings.TrimSpace(db.URL) == "":
			return alerr.Newf(alerr.ErrScriptInvalid, "database %q has no url", db.Name).
				WithDatabase(db.Name)
		case seen[db.Name]:
			return alerr.Newf(alerr.ErrScriptInvalid, "database %q is declared twice", db.Name).
				WithDatabase(db.Name)
		}
		seen[db.Name] = true
	}

	for i, step := range s.Steps {
		if strings.TrimSpace(step.DB) == "" {
			return alerr.Newf(alerr.ErrScriptInvalid, "step %s has no db", step.Label(i))
		}
		if strings.TrimSpace(step.SQL) == "" {
			return alerr.Newf(alerr.ErrScriptInvalid, "step %s has no sql", step.Label(i)).
				WithDatabase(step.DB)
		}

		expectations := 0
		if step.Expect != nil {
			expectations++
		}
		if step.ExpectNull {
			expectations++
		}
		if step.ExpectError != "" {
			expectations++
		}
		if expectations > 1 {
			return alerr.Newf(alerr.ErrScriptInvalid, "step %s sets more than one expectation", step.Label(i)).
				WithDatabase(step.DB).
				WithHelp("use only one of expect, expect_null and expect_error")
		}
	}
	return nil
}
