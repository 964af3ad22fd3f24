// Copyright 2024 Serveup Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package requirements holds a read-only model of a pip requirements
// manifest. The installer owns resolution; this model exists so the CLI
// can report on a manifest without ever modifying it.
package requirements

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/serveup-dev/serveup/pkg/util"
)

var (
	// name, optional extras, then whatever follows
	requirementPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(.*)$`)
	canonicalPattern   = regexp.MustCompile(`[-_.]+`)
)

// Requirement is a single manifest line. Directive lines (installer
// flags, includes, bare URLs) are carried raw so nothing is lost.
type Requirement struct {
	Name       string
	Extras     []string
	Constraint string
	Marker     string
	Raw        string
	Directive  bool
}

type Manifest struct {
	Path         string
	Requirements []Requirement
}

// CanonicalName lowers a package name and collapses separator runs,
// matching the package index's name normalization.
func CanonicalName(name string) string {
	return strings.ToLower(canonicalPattern.ReplaceAllString(name, "-"))
}

func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reqs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Manifest{Path: path, Requirements: reqs}, nil
}

func Parse(r io.Reader) ([]Requirement, error) {
	var reqs []Requirement

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// inline comments start at a blank-preceded #
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		raw := line

		// installer flags (-r, -e, --index-url, ...) pass through to pip
		// untouched
		if strings.HasPrefix(line, "-") {
			reqs = append(reqs, Requirement{Raw: raw, Directive: true})
			continue
		}

		// direct references: `name @ url` keeps its name, a bare or VCS
		// URL is opaque to us
		if schemeIdx := strings.Index(line, "://"); schemeIdx >= 0 {
			atIdx := strings.Index(line, "@")
			if atIdx < 0 || atIdx > schemeIdx {
				reqs = append(reqs, Requirement{Raw: raw, Directive: true})
				continue
			}
			name := strings.TrimSpace(line[:atIdx])
			if matches := requirementPattern.FindStringSubmatch(name); matches != nil && matches[3] == "" {
				req := Requirement{
					Name:       matches[1],
					Constraint: strings.TrimSpace(line[atIdx+1:]),
					Raw:        raw,
				}
				reqs = append(reqs, req)
			} else {
				reqs = append(reqs, Requirement{Raw: raw, Directive: true})
			}
			continue
		}

		matches := requirementPattern.FindStringSubmatch(line)
		if matches == nil {
			reqs = append(reqs, Requirement{Raw: raw, Directive: true})
			continue
		}

		req := Requirement{
			Name: matches[1],
			Raw:  raw,
		}
		if matches[2] != "" {
			inner := strings.Trim(matches[2], "[]")
			for _, extra := range strings.Split(inner, ",") {
				if extra = strings.TrimSpace(extra); extra != "" {
					req.Extras = append(req.Extras, extra)
				}
			}
		}

		rest := strings.TrimSpace(matches[3])
		if idx := strings.Index(rest, ";"); idx >= 0 {
			req.Marker = strings.TrimSpace(rest[idx+1:])
			rest = strings.TrimSpace(rest[:idx])
		}
		req.Constraint = rest

		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return reqs, nil
}

// Lookup finds a requirement by name, ignoring case and separator
// style.
func (m *Manifest) Lookup(name string) (*Requirement, bool) {
	canonical := CanonicalName(name)
	for i := range m.Requirements {
		r := &m.Requirements[i]
		if r.Directive {
			continue
		}
		if CanonicalName(r.Name) == canonical {
			return r, true
		}
	}
	return nil, false
}

// Count returns the number of named requirements, excluding directives.
func (m *Manifest) Count() int {
	n := 0
	for _, r := range m.Requirements {
		if !r.Directive {
			n++
		}
	}
	return n
}

// Fingerprint hashes the manifest bytes so callers can tell whether it
// changed between two points in time.
func Fingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return util.HashString(string(data))
}
