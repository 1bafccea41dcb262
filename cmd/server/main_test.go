package main

import (
	"net/http/httptest"
	"strings"
	"testing"

	"staminad.ai/internal/sim/scene"
)

func TestWriteMetrics(t *testing.T) {
	st := scene.SceneState{
		SceneID:   "s1",
		SceneTime: 4200,
		Players:   1,
		Entities: []scene.EntityState{
			{EntityID: 1, Consuming: true},
			{EntityID: 2, Recovering: true},
			{EntityID: 3},
		},
	}
	rec := httptest.NewRecorder()
	writeMetrics(rec, st, nil)
	body := rec.Body.String()
	for _, want := range []string{
		`staminad_scene_time_ms{scene="s1"} 4200`,
		`staminad_scene_players{scene="s1"} 1`,
		`staminad_stamina_entities{scene="s1",state="all"} 3`,
		`staminad_stamina_entities{scene="s1",state="consuming"} 1`,
		`staminad_stamina_entities{scene="s1",state="recovering"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
	if strings.Contains(body, "staminad_index_") {
		t.Fatalf("index metrics without index:\n%s", body)
	}
}

func TestOpenRuntimeIndex(t *testing.T) {
	idx, err := openRuntimeIndex(t.TempDir(), true)
	if err != nil || idx != nil {
		t.Fatalf("disabled: idx=%v err=%v", idx, err)
	}

	t.Setenv("STAMINAD_INDEX_BACKEND", "bogus")
	if _, err := openRuntimeIndex(t.TempDir(), false); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	t.Setenv("STAMINAD_INDEX_BACKEND", "")
	idx, err = openRuntimeIndex(t.TempDir(), false)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("STAMINAD_TEST_BOOL", "false")
	if envBool("STAMINAD_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("STAMINAD_TEST_BOOL", "nope")
	if !envBool("STAMINAD_TEST_BOOL", true) {
		t.Fatalf("expected default on parse error")
	}
}
