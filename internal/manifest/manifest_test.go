package manifest

import (
	"reflect"
	"testing"
)

func TestDeclaredNames(t *testing.T) {
	p := &Project{
		Dependencies:    map[string]string{"b": "^1.0.0", "a": "^2.0.0"},
		DevDependencies: map[string]string{"z": "^1.0.0", "a": "^2.0.0"},
	}

	got := p.DeclaredNames(false)
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DeclaredNames(false) = %v, want %v", got, want)
	}

	got = p.DeclaredNames(true)
	if want := []string{"a", "b", "z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DeclaredNames(true) = %v, want %v", got, want)
	}
}

func TestIsPresent(t *testing.T) {
	p := &Project{
		Dependencies:    map[string]string{"declared": "^1.0.0"},
		DevDependencies: map[string]string{"devonly": "^1.0.0"},
		Installed:       map[string]string{"installed": "1.0.0"},
	}

	for _, name := range []string{"declared", "devonly", "installed"} {
		if !p.IsPresent(name) {
			t.Errorf("IsPresent(%q) = false, want true", name)
		}
	}
	if p.IsPresent("ghost") {
		t.Error("IsPresent(ghost) = true, want false")
	}
}

func TestIsDev(t *testing.T) {
	p := &Project{
		Dependencies:    map[string]string{"both": "^1.0.0"},
		DevDependencies: map[string]string{"both": "^1.0.0", "devonly": "^1.0.0"},
	}
	if p.IsDev("both") {
		t.Error("a package in both sections is not dev-only")
	}
	if !p.IsDev("devonly") {
		t.Error("IsDev(devonly) = false, want true")
	}
}

func TestNilProjectIsEmpty(t *testing.T) {
	var p *Project
	if got := p.DeclaredNames(true); got != nil {
		t.Errorf("DeclaredNames on nil project = %v, want nil", got)
	}
	if p.IsPresent("a") || p.IsDev("a") {
		t.Error("nil project must report nothing present")
	}
	if _, ok := p.DeclaredRange("a"); ok {
		t.Error("nil project must have no declared ranges")
	}
	if _, ok := p.InstalledVersion("a"); ok {
		t.Error("nil project must have no installed versions")
	}
}
