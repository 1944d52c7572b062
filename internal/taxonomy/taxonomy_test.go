package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	tax := Default()
	if err := tax.Validate(); err != nil {
		t.Fatalf("default taxonomy invalid: %v", err)
	}
	if tax.Version != DefaultVersion {
		t.Fatalf("expected version %s, got %s", DefaultVersion, tax.Version)
	}
}

func TestClosedSets(t *testing.T) {
	tax := Default()
	if !tax.HasCategory("roads") {
		t.Fatalf("expected roads category")
	}
	if tax.HasCategory("parks") {
		t.Fatalf("parks must not be a member")
	}
	if !tax.HasSeverity("critical") {
		t.Fatalf("expected critical severity")
	}
	if tax.HasSeverity("urgent") {
		t.Fatalf("urgent must not be a member")
	}
	if !tax.HasTag("roads", "Pothole") {
		t.Fatalf("expected Pothole under roads")
	}
	if tax.HasTag("water", "Pothole") {
		t.Fatalf("Pothole must not belong to water")
	}
}

func TestSeverityOrdering(t *testing.T) {
	tax := Default()
	if tax.SeverityRank("low") >= tax.SeverityRank("medium") {
		t.Fatalf("low must rank below medium")
	}
	if tax.SeverityRank("high") >= tax.SeverityRank("critical") {
		t.Fatalf("high must rank below critical")
	}
	if tax.SeverityRank("unknown") != -1 {
		t.Fatalf("unknown severity must rank -1")
	}
}

func TestFloorSeverity(t *testing.T) {
	tax := Default()
	// Pipe Burst floors to critical even when the model says low.
	if got := tax.FloorSeverity("low", []string{"Pipe Burst"}); got != "critical" {
		t.Fatalf("expected critical, got %s", got)
	}
	// The model's judgment is kept when already above the floor.
	if got := tax.FloorSeverity("critical", []string{"Street Light"}); got != "critical" {
		t.Fatalf("expected critical kept, got %s", got)
	}
	// No floors hit: severity unchanged.
	if got := tax.FloorSeverity("medium", nil); got != "medium" {
		t.Fatalf("expected medium, got %s", got)
	}
}

func TestRouteFor(t *testing.T) {
	tax := Default()
	route, ok := tax.RouteFor("electricity")
	if !ok {
		t.Fatalf("expected route for electricity")
	}
	if route.ContactEmail != "electricity@city.gov" {
		t.Fatalf("unexpected contact email: %s", route.ContactEmail)
	}
	if _, ok := tax.RouteFor("parks"); ok {
		t.Fatalf("expected no route for unknown category")
	}
}

func TestLoadOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	doc := `
version: test-1
categories:
  - slug: roads
    name: Roads
    tags: ["Pothole"]
    route:
      department: Roads
      contact_email: roads@example.gov
severities: [low, high]
severity_floor:
  Pothole: high
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	tax, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tax.Version != "test-1" {
		t.Fatalf("expected test-1, got %s", tax.Version)
	}
	if !tax.HasTag("roads", "Pothole") {
		t.Fatalf("expected Pothole tag")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	doc := `
version: test-1
categories:
  - slug: roads
    tags: ["Pothole"]
severities: [low, high]
severity_floor:
  Pothole: urgent
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown floor severity")
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	tax, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tax.Version != DefaultVersion {
		t.Fatalf("expected default taxonomy")
	}
}
