package lang

import "testing"

func TestLookup_ExactCode(t *testing.T) {
	r := NewRegistry()
	if c := r.Lookup("en"); c.Name != "english" {
		t.Fatalf("expected english, got %q", c.Name)
	}
}

func TestLookup_PrefixFallback(t *testing.T) {
	r := NewRegistry()
	c := r.Lookup("zh_hk")
	if c.Name != "jieba" {
		t.Fatalf("expected prefix fallback to jieba, got %q", c.Name)
	}
}

func TestLookup_DefaultFallback(t *testing.T) {
	r := NewRegistry()
	c := r.Lookup("xx")
	if c.Name != "simple" {
		t.Fatalf("expected default simple fallback, got %q", c.Name)
	}
}

func TestLookup_EmptyUsesDefault(t *testing.T) {
	r := NewRegistry()
	c := r.Lookup("")
	if c.Code != "default" {
		t.Fatalf("expected default row, got %+v", c)
	}
}

func TestInstallOverridesLookup(t *testing.T) {
	r := NewRegistry()
	r.Install(Config{Code: "pt", Name: "portuguese", Installed: true})
	c := r.Lookup("PT")
	if c.Name != "portuguese" {
		t.Fatalf("expected installed override, got %+v", c)
	}
}

func TestUninstallRetainsRowButMarksFalse(t *testing.T) {
	r := NewRegistry()
	r.Uninstall("en")
	c := r.Lookup("en")
	if c.Installed {
		t.Fatal("expected en to be marked uninstalled")
	}
	if c.Name != "english" {
		t.Fatalf("expected name retained, got %q", c.Name)
	}
}

func TestNewRegistryFromRows_FallsBackToSeedForMissingCodes(t *testing.T) {
	r := NewRegistryFromRows([]Config{{Code: "en", Name: "english_custom", Installed: true}})
	if c := r.Lookup("en"); c.Name != "english_custom" {
		t.Fatalf("expected override to take effect, got %q", c.Name)
	}
	if c := r.Lookup("zh"); c.Name != "jieba" {
		t.Fatalf("expected seed default retained for zh, got %q", c.Name)
	}
}
