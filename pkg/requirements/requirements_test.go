package requirements

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	manifest := `
# web stack
fastapi==0.112.0
uvicorn[standard]>=0.30,<0.31
pydantic ~=2.8  # validated models

requests
httpx[http2,brotli]==0.27.0 ; python_version >= "3.9"

-r extra-requirements.txt
--extra-index-url https://mirror.example.com/simple
git+https://github.com/example/widget.git@v1.2.0
flask @ https://files.example.com/flask-3.0.3.tar.gz
`

	reqs, err := Parse(strings.NewReader(manifest))
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 9 {
		t.Fatalf("expected 9 requirements, got %d", len(reqs))
	}

	named := map[string]Requirement{}
	directives := []string{}
	for _, r := range reqs {
		if r.Directive {
			directives = append(directives, r.Raw)
		} else {
			named[r.Name] = r
		}
	}

	if len(directives) != 3 {
		t.Fatalf("expected 3 directives, got %d: %v", len(directives), directives)
	}

	tests := []struct {
		name       string
		constraint string
		extras     int
		marker     string
	}{
		{"fastapi", "==0.112.0", 0, ""},
		{"uvicorn", ">=0.30,<0.31", 1, ""},
		{"pydantic", "~=2.8", 0, ""},
		{"requests", "", 0, ""},
		{"httpx", "==0.27.0", 2, `python_version >= "3.9"`},
		{"flask", "https://files.example.com/flask-3.0.3.tar.gz", 0, ""},
	}
	for _, tc := range tests {
		r, ok := named[tc.name]
		if !ok {
			t.Errorf("missing requirement %q", tc.name)
			continue
		}
		if r.Constraint != tc.constraint {
			t.Errorf("%s: expected constraint %q, got %q", tc.name, tc.constraint, r.Constraint)
		}
		if len(r.Extras) != tc.extras {
			t.Errorf("%s: expected %d extras, got %v", tc.name, tc.extras, r.Extras)
		}
		if r.Marker != tc.marker {
			t.Errorf("%s: expected marker %q, got %q", tc.name, tc.marker, r.Marker)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	reqs, err := Parse(strings.NewReader("\n# only comments\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 0 {
		t.Fatalf("expected no requirements, got %d", len(reqs))
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"Django", "django"},
		{"python_dateutil", "python-dateutil"},
		{"zope.interface", "zope-interface"},
		{"ruamel.yaml.clib", "ruamel-yaml-clib"},
		{"A__b--c..d", "a-b-c-d"},
	}
	for _, tc := range tests {
		if got := CanonicalName(tc.in); got != tc.out {
			t.Errorf("CanonicalName(%q): expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestLookup(t *testing.T) {
	reqs, err := Parse(strings.NewReader("python_dateutil==2.9.0\nuvicorn[standard]\n-r more.txt\n"))
	if err != nil {
		t.Fatal(err)
	}
	m := &Manifest{Requirements: reqs}

	if m.Count() != 2 {
		t.Fatalf("expected count 2, got %d", m.Count())
	}

	r, ok := m.Lookup("Python-Dateutil")
	if !ok {
		t.Fatal("expected lookup to match across separator styles")
	}
	if r.Constraint != "==2.9.0" {
		t.Errorf("expected constraint ==2.9.0, got %q", r.Constraint)
	}

	if _, ok := m.Lookup("fastapi"); ok {
		t.Error("expected lookup miss for absent package")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(path, []byte("fastapi==0.112.0\nuvicorn\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Path != path {
		t.Errorf("expected path %q, got %q", path, m.Path)
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 requirements, got %d", m.Count())
	}

	if _, err := ParseFile(filepath.Join(dir, "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(path, []byte("fastapi==0.112.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	first, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected stable fingerprint for unchanged file")
	}

	if err := os.WriteFile(path, []byte("fastapi==0.113.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	changed, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	if changed == first {
		t.Error("expected fingerprint to change with file contents")
	}
}
