package python

import (
	"os"
	"path/filepath"
	"testing"
)

func scaffold(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDetectProjectType(t *testing.T) {
	// requirements.txt only
	dir := scaffold(t, map[string]string{"requirements.txt": "fastapi==0.104.1\n"})
	projectType, err := DetectProjectType(dir)
	if err != nil {
		t.Errorf("detection should succeed for requirements.txt: %v", err)
	}
	if projectType != ProjectTypePip {
		t.Errorf("expected %s for requirements.txt, got %s", ProjectTypePip, projectType)
	}
	if !projectType.IsPython() {
		t.Error("pip projects are Python projects")
	}

	// plain pyproject.toml defaults to pip
	dir = scaffold(t, map[string]string{"pyproject.toml": "[project]\nname = \"api\"\ndependencies = [\"fastapi\"]\n"})
	projectType, err = DetectProjectType(dir)
	if err != nil {
		t.Errorf("detection should succeed for pyproject.toml: %v", err)
	}
	if projectType != ProjectTypePip {
		t.Errorf("expected %s for plain pyproject.toml, got %s", ProjectTypePip, projectType)
	}

	// dependency-groups marks UV
	dir = scaffold(t, map[string]string{"pyproject.toml": "[project]\nname = \"api\"\n\n[dependency-groups]\ndev = [\"pytest\"]\n"})
	projectType, _ = DetectProjectType(dir)
	if projectType != ProjectTypeUV {
		t.Errorf("expected %s for dependency-groups, got %s", ProjectTypeUV, projectType)
	}

	// uv.lock outranks everything
	dir = scaffold(t, map[string]string{
		"uv.lock":          "# lock\n",
		"requirements.txt": "fastapi\n",
	})
	projectType, _ = DetectProjectType(dir)
	if projectType != ProjectTypeUV {
		t.Errorf("expected %s when uv.lock present, got %s", ProjectTypeUV, projectType)
	}

	// poetry.lock and tool.poetry
	dir = scaffold(t, map[string]string{"poetry.lock": "# lock\n"})
	projectType, _ = DetectProjectType(dir)
	if projectType != ProjectTypePoetry {
		t.Errorf("expected %s for poetry.lock, got %s", ProjectTypePoetry, projectType)
	}
	dir = scaffold(t, map[string]string{"pyproject.toml": "[tool.poetry]\nname = \"api\"\n"})
	projectType, _ = DetectProjectType(dir)
	if projectType != ProjectTypePoetry {
		t.Errorf("expected %s for tool.poetry, got %s", ProjectTypePoetry, projectType)
	}

	// Pipenv lock treated as pip-compatible
	dir = scaffold(t, map[string]string{"Pipfile.lock": "{}\n"})
	projectType, _ = DetectProjectType(dir)
	if projectType != ProjectTypePip {
		t.Errorf("expected %s for Pipfile.lock, got %s", ProjectTypePip, projectType)
	}

	// Node projects are named, not served
	dir = scaffold(t, map[string]string{"package.json": "{}\n"})
	projectType, _ = DetectProjectType(dir)
	if projectType != ProjectTypeNode {
		t.Errorf("expected %s for package.json, got %s", ProjectTypeNode, projectType)
	}
	if projectType.IsPython() {
		t.Error("node projects are not Python projects")
	}

	// nothing at all
	projectType, err = DetectProjectType(t.TempDir())
	if err == nil {
		t.Error("empty directory should not identify")
	}
	if projectType != ProjectTypeUnknown {
		t.Errorf("expected %s for empty directory, got %s", ProjectTypeUnknown, projectType)
	}
}

func TestLocateLockfile(t *testing.T) {
	dir := scaffold(t, map[string]string{
		"uv.lock":          "# lock\n",
		"pyproject.toml":   "[project]\n",
		"requirements.txt": "fastapi\n",
	})

	found, name := LocateLockfile(dir, ProjectTypeUV)
	if !found || name != "uv.lock" {
		t.Errorf("uv.lock should win for UV projects, got %q", name)
	}

	found, name = LocateLockfile(dir, ProjectTypePip)
	if !found || name != "pyproject.toml" {
		t.Errorf("pyproject.toml should win for pip without requirements.lock, got %q", name)
	}

	found, _ = LocateLockfile(t.TempDir(), ProjectTypePip)
	if found {
		t.Error("empty directory has no dependency files")
	}

	found, _ = LocateLockfile(dir, ProjectTypeUnknown)
	if found {
		t.Error("unknown project type has no dependency files")
	}
}
