package models

import "testing"

func TestParseDepartment(t *testing.T) {
	for _, d := range Departments {
		if got, ok := ParseDepartment(string(d)); !ok || got != d {
			t.Fatalf("expected %q to parse", d)
		}
	}
	for _, bad := range []string{"", "Dispatch", " hr", "ceo", "fleet-manager"} {
		if _, ok := ParseDepartment(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
