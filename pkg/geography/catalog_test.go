package geography

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog.Provinces) != 5 {
		t.Fatalf("expected five provinces, got %d", len(catalog.Provinces))
	}
	if !catalog.Valid("Punjab") {
		t.Fatal("expected Punjab to be a known province")
	}
	if !catalog.Valid("punjab") {
		t.Fatal("expected province lookup to be case-insensitive")
	}
	if catalog.Valid("Atlantis") {
		t.Fatal("unknown province must not validate")
	}
}

func TestLookup(t *testing.T) {
	province, ok := DefaultCatalog().Lookup("Sindh")
	if !ok {
		t.Fatal("expected Sindh in catalog")
	}
	if len(province.Cities) == 0 {
		t.Fatal("expected Sindh to list cities")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := []byte("provinces:\n  - name: Testland\n    cities: [Alpha, Beta]\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	catalog, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	if !catalog.Valid("Testland") {
		t.Fatal("expected loaded province to validate")
	}
}

func TestLoadEmptyCatalogFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("provinces: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected empty catalog to fail")
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	catalog, err := Load("")
	if err != nil {
		t.Fatalf("empty path should fall back to default: %v", err)
	}
	if !catalog.Valid("Balochistan") {
		t.Fatal("expected default catalog")
	}
}
