package cache

import (
	"testing"
)

func TestKeyString(t *testing.T) {
	ranged := Key{Dashboard: "executive", Tenant: "acme", From: "2024-03-01", To: "2024-03-15"}
	if got := ranged.String(); got != "dashboard:executive:acme:2024-03-01:2024-03-15" {
		t.Fatalf("unexpected range-scoped key: %q", got)
	}

	plain := Key{Dashboard: "alerts", Tenant: "acme"}
	if got := plain.String(); got != "dashboard:alerts:acme" {
		t.Fatalf("unexpected tenant-scoped key: %q", got)
	}
}

func TestKeyDeterminism(t *testing.T) {
	a := Key{Dashboard: "executive", Tenant: "acme", From: "2024-03-01", To: "2024-03-15"}
	b := Key{Dashboard: "executive", Tenant: "acme", From: "2024-03-01", To: "2024-03-15"}
	if a.String() != b.String() {
		t.Fatalf("identical fields produced different keys: %q vs %q", a.String(), b.String())
	}

	// Any differing field must produce a different key.
	variants := []Key{
		{Dashboard: "sales", Tenant: "acme", From: "2024-03-01", To: "2024-03-15"},
		{Dashboard: "executive", Tenant: "globex", From: "2024-03-01", To: "2024-03-15"},
		{Dashboard: "executive", Tenant: "acme", From: "2024-03-02", To: "2024-03-15"},
		{Dashboard: "executive", Tenant: "acme", From: "2024-03-01", To: "2024-03-14"},
	}
	for _, v := range variants {
		if v.String() == a.String() {
			t.Fatalf("variant %+v collided with base key %q", v, a.String())
		}
	}
}

func TestParseKey(t *testing.T) {
	dash, tenant, ok := parseKey("dashboard:executive:acme:2024-03-01:2024-03-15")
	if !ok || dash != "executive" || tenant != "acme" {
		t.Fatalf("parse range-scoped: got (%q, %q, %v)", dash, tenant, ok)
	}

	dash, tenant, ok = parseKey("dashboard:alerts:acme")
	if !ok || dash != "alerts" || tenant != "acme" {
		t.Fatalf("parse tenant-scoped: got (%q, %q, %v)", dash, tenant, ok)
	}

	if _, _, ok := parseKey("something:else"); ok {
		t.Fatalf("expected parse failure for foreign key")
	}
}
