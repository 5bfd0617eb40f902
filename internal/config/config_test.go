package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vhavlena/cegis-go/cegis"
)

func TestParseOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte("max_rounds: 12\nlog:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Default()
	want.MaxRounds = 12
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key": "rounds: 3\n",
		"fairness":    "fairness: sometimes\n",
		"negative":    "max_rounds: -1\n",
		"backend":     "backend: cvc5\n",
		"log level":   "log:\n  level: loud\n",
		"log format":  "log:\n  format: xml\n",
		"malformed":   "max_rounds: [1\n",
		"wrong type":  "max_rounds: many\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected an error for %q", doc)
			}
		})
	}
}

func TestFairnessFor(t *testing.T) {
	cfg := Default()
	if got := cfg.FairnessFor(cegis.FairnessUFSize); got != cegis.FairnessUFSize {
		t.Fatalf("expected auto to keep uf-dt-size, got %v", got)
	}
	if got := cfg.FairnessFor(cegis.FairnessNone); got != cegis.FairnessNone {
		t.Fatalf("expected auto to keep none, got %v", got)
	}
	cfg.Fairness = "none"
	if got := cfg.FairnessFor(cegis.FairnessUFSize); got != cegis.FairnessNone {
		t.Fatalf("expected none, got %v", got)
	}
	opts := cfg.Options(cegis.FairnessUFSize, nil)
	if opts.Engine.Fairness != cegis.FairnessNone || opts.MaxRounds != cfg.MaxRounds {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cegis.yaml")
	if err := os.WriteFile(path, []byte("backend: z3\nfairness: uf-dt-size\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "z3" || cfg.Fairness != "uf-dt-size" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestNewLogger(t *testing.T) {
	var b strings.Builder
	cfg := Default()
	cfg.Log.Format = "json"
	log, err := cfg.NewLogger(&b)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	log.Debug("hidden")
	log.Info("shown", "rounds", 3)
	out := b.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug records to be filtered, got %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"rounds":3`) {
		t.Fatalf("expected a JSON record, got %s", out)
	}
}
