package main

import "testing"

func TestResolvePathArgsExplicitPath(t *testing.T) {
	cfg := config{RegistryFile: "default.txt"}
	path, target, line := resolvePathArgs(cfg, []string{"explicit.txt", "alice", "a.b"})
	if path != "explicit.txt" || target != "alice" || line != "a.b" {
		t.Fatalf("got (%q, %q, %q)", path, target, line)
	}
}

func TestResolvePathArgsFallsBackToConfig(t *testing.T) {
	cfg := config{RegistryFile: "default.txt"}
	path, target, line := resolvePathArgs(cfg, []string{"alice", "a.b"})
	if path != "default.txt" || target != "alice" || line != "a.b" {
		t.Fatalf("got (%q, %q, %q)", path, target, line)
	}
}

func TestApplyGrantUserPermission(t *testing.T) {
	r := newRegistry()
	if err := applyGrant(r, "alice", "a.b", false, false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.UserHasPermission("alice", "a.b") {
		t.Fatal("expected alice to hold a.b after applyGrant")
	}
}

func TestApplyGrantGroupRef(t *testing.T) {
	r := newRegistry()
	_ = applyGrant(r, "staff", "staff.only", true, false, false)
	if err := applyGrant(r, "alice", "staff", false, false, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.UserHasPermission("alice", "staff.only") {
		t.Fatal("expected alice to inherit staff's permission via the ref grant")
	}
}

func TestApplyGrantDefault(t *testing.T) {
	r := newRegistry()
	if err := applyGrant(r, "", "public.read", false, true, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.HasDefaultPermission("public.read") {
		t.Fatal("expected the default group to hold public.read")
	}
}
