package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-cms-autotranslate/pkg/testsupport"
)

const testConfig = `
dimension:
  name: language
  defaultPreset: en_US
  presets:
    en_US: {label: English}
    de: {label: German, translationStrategy: sync}
    it: {label: Italian, translationStrategy: none}
nodeTypes:
  file: %s
logging:
  level: error
`

const testNodeTypes = `
nodeTypes:
  - name: page
    properties:
      title:
        type: string
        automaticTranslation: true
      slug:
        type: string
        automaticTranslation: false
`

const testFixture = `
workspace: user-admin
nodes:
  - key: sites
    path: /sites
    locale: en_US
    nodeType: page
    properties:
      title: Sites
  - key: home
    path: /sites/home
    locale: en_US
    nodeType: page
    properties:
      title: Home
      slug: home
`

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	typesPath := testsupport.WriteFixture(t, dir, "node_types.yaml", testNodeTypes)
	configPath := testsupport.WriteFixture(t, dir, "config.yaml", strings.Replace(testConfig, "%s", typesPath, 1))
	fixturePath := testsupport.WriteFixture(t, dir, "fixture.yaml", testFixture)
	return configPath, fixturePath
}

func TestRunPublishesFixtureAndPrintsVariants(t *testing.T) {
	configPath, fixturePath := writeInputs(t)

	var out bytes.Buffer
	if err := run([]string{"-config", configPath, "-fixture", fixturePath}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{
		"/sites [de] title=Sites",
		"/sites [en_US] title=Sites",
		"/sites/home [de] slug=home title=Home",
		"/sites/home [en_US] slug=home title=Home",
	}
	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected output\nwant:\n%s\ngot:\n%s", strings.Join(want, "\n"), out.String())
	}
}

func TestRunManualSyncFiltersByNode(t *testing.T) {
	configPath, fixturePath := writeInputs(t)

	var out bytes.Buffer
	args := []string{"-config", configPath, "-fixture", fixturePath, "-node", "/sites", "-manual", "-translate=false"}
	if err := run(args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := strings.TrimSpace(out.String())
	want := "/sites [de] title=Sites\n/sites [en_US] title=Sites"
	if got != want {
		t.Fatalf("unexpected output\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestRunRequiresFixture(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, &out); err == nil || !strings.Contains(err.Error(), "fixture is required") {
		t.Fatalf("expected fixture error, got %v", err)
	}
}
