package engine

import (
	"errors"
	"testing"
)

func TestNewModelValid(t *testing.T) {
	source := tempSource(t)
	model := mustModel(t, []Entry{
		pkgEntry("git", PresencePresent),
		linkEntry("/home/u/.gitconfig", source),
		svcEntry("sshd", PresencePresent, true, true),
	})

	if model.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", model.Len())
	}
	desired, ok := model.Desired(ID{KindPackage, "git"})
	if !ok || desired.Presence != PresencePresent {
		t.Errorf("unexpected desired state for git: %+v (found=%v)", desired, ok)
	}
	if _, ok := model.Desired(ID{KindPackage, "missing"}); ok {
		t.Error("expected lookup miss for undeclared resource")
	}
}

func TestNewModelRejectsEmptyName(t *testing.T) {
	_, err := NewModel([]Entry{pkgEntry("", PresencePresent)})
	if !IsInvalidManifest(err) {
		t.Fatalf("expected invalid manifest error, got %v", err)
	}
}

func TestNewModelRejectsDuplicates(t *testing.T) {
	_, err := NewModel([]Entry{
		pkgEntry("git", PresencePresent),
		pkgEntry("git", PresenceAbsent),
	})
	if !IsInvalidManifest(err) {
		t.Fatalf("expected invalid manifest error, got %v", err)
	}
}

func TestNewModelAllowsSameNameAcrossKinds(t *testing.T) {
	mustModel(t, []Entry{
		pkgEntry("docker", PresencePresent),
		svcEntry("docker", PresencePresent, true, true),
	})
}

func TestNewModelRejectsRelativeLinkTarget(t *testing.T) {
	_, err := NewModel([]Entry{linkEntry("relative/.vimrc", tempSource(t))})
	if !IsInvalidManifest(err) {
		t.Fatalf("expected invalid manifest error, got %v", err)
	}
}

func TestNewModelRejectsRelativeLinkSource(t *testing.T) {
	_, err := NewModel([]Entry{linkEntry("/home/u/.vimrc", "dotfiles/vimrc")})
	if !IsInvalidManifest(err) {
		t.Fatalf("expected invalid manifest error, got %v", err)
	}
}

func TestNewModelRejectsMissingLinkSource(t *testing.T) {
	_, err := NewModel([]Entry{linkEntry("/home/u/.vimrc", "/does/not/exist")})
	if !IsInvalidManifest(err) {
		t.Fatalf("expected invalid manifest error, got %v", err)
	}
}

func TestNewModelRejectsUnknownPresence(t *testing.T) {
	_, err := NewModel([]Entry{{
		ID:      ID{Kind: KindPackage, Name: "git"},
		Desired: DesiredState{Presence: PresenceUnknown},
	}})
	if !IsInvalidManifest(err) {
		t.Fatalf("expected invalid manifest error, got %v", err)
	}
}

func TestNewModelRejectsUnknownKind(t *testing.T) {
	_, err := NewModel([]Entry{{
		ID:      ID{Kind: "container", Name: "nginx"},
		Desired: DesiredState{Presence: PresencePresent},
	}})
	if !IsInvalidManifest(err) {
		t.Fatalf("expected invalid manifest error, got %v", err)
	}
}

func TestIDString(t *testing.T) {
	id := ID{Kind: KindPackage, Name: "git"}
	if id.String() != "package/git" {
		t.Errorf("expected package/git, got %s", id.String())
	}
}

func TestErrorClassification(t *testing.T) {
	inner := errors.New("boom")
	err := NewError(ErrBackend, "call failed", inner).
		WithResource("package/git").
		WithOperation("install")

	if KindOf(err) != ErrBackend {
		t.Errorf("expected backend kind, got %s", KindOf(err))
	}
	if !errors.Is(err, inner) {
		t.Error("expected unwrap to reach the cause")
	}
	if !errors.Is(err, &Error{Kind: ErrBackend}) {
		t.Error("expected kind-based equality")
	}
	if errors.Is(err, &Error{Kind: ErrLinkConflict}) {
		t.Error("unexpected equality across kinds")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("expected empty kind for foreign errors")
	}
}
