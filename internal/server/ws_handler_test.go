package server

import (
	"encoding/json"
	"log/slog"
	"testing"

	"StarCharts/internal/nav"
	"StarCharts/internal/store"
)

const testCatalogJSON = `{
	"sectors": {
		"a0": {
			"star": {"id": "a0_star", "name": "Helios", "type": "star", "pos": [0, 0, 0]},
			"objects": [
				{"id": "a0_inner_planet", "name": "Hearth", "type": "planet", "pos": [7, 0, 0]},
				{"id": "a0_outer_planet", "name": "Rime", "type": "planet", "pos": [15, 0, 0]}
			]
		}
	}
}`

func testClient(t *testing.T) *client {
	t.Helper()
	catalog, err := nav.ParseCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	session, err := nav.NewSession("test", catalog, nav.SessionConfig{
		CellSize:        50,
		DiscoveryRadius: 10,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return &client{
		session:   session,
		snapshots: store.NewMemoryStore(),
		log:       slog.Default(),
	}
}

func inbound(t *testing.T, msgType string, payload any) inboundMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return inboundMessage{Type: msgType, Payload: data}
}

func TestHandlePosEmitsDiscoveries(t *testing.T) {
	c := testClient(t)
	out := c.handle(inbound(t, "pos", posPayload{Pos: positionDTO{}, Dt: 0.05}))
	if len(out) < 2 {
		t.Fatalf("expected discovery + state messages, got %v", out)
	}
	if out[0].Type != "discovery" {
		t.Fatalf("expected discovery first, got %s", out[0].Type)
	}
	dtos := out[0].Payload.([]discoveryDTO)
	found := false
	for _, d := range dtos {
		if d.ID == "A0_inner_planet" {
			found = true
			if d.Method != "proximity" {
				t.Fatalf("expected proximity, got %s", d.Method)
			}
		}
		if d.ID == "A0_outer_planet" {
			t.Fatal("object at distance 15 discovered with radius 10")
		}
	}
	if !found {
		t.Fatalf("inner planet not in discovery batch: %v", dtos)
	}

	// Standing still produces no further traffic.
	quiet := c.handle(inbound(t, "pos", posPayload{Pos: positionDTO{}, Dt: 0.05}))
	if len(quiet) != 0 {
		t.Fatalf("expected quiet tick, got %v", quiet)
	}
}

func TestHandleTargetFlow(t *testing.T) {
	c := testClient(t)

	out := c.handle(inbound(t, "create_waypoint", createWaypointPayload{Name: "Rally", Pos: positionDTO{X: 100}}))
	if out[0].Type != "waypoint" {
		t.Fatalf("expected waypoint message, got %s", out[0].Type)
	}
	wp := out[0].Payload.(waypointDTO)

	out = c.handle(inbound(t, "set_waypoint_target", idPayload{ID: wp.ID}))
	state := out[0].Payload.(stateDTO)
	if state.Target == nil || state.Target.Kind != "virtual" {
		t.Fatalf("expected virtual target, got %+v", state.Target)
	}

	out = c.handle(inbound(t, "set_target", idPayload{ID: "a0_inner_planet"}))
	state = out[0].Payload.(stateDTO)
	if state.Target == nil || state.Target.Kind != "physical" {
		t.Fatalf("expected physical target, got %+v", state.Target)
	}
	if !state.HasInterrupted {
		t.Fatal("displaced waypoint should be reported as interrupted")
	}

	out = c.handle(inbound(t, "resume_waypoint", struct{}{}))
	state = out[0].Payload.(stateDTO)
	if state.Target == nil || state.Target.ID != wp.ID {
		t.Fatalf("resume restored wrong target: %+v", state.Target)
	}
	if state.HasInterrupted {
		t.Fatal("slot should be empty after resume")
	}

	out = c.handle(inbound(t, "resume_waypoint", struct{}{}))
	if out[0].Type != "error" {
		t.Fatalf("resume with empty slot should error, got %v", out[0])
	}
}

func TestHandleExportImport(t *testing.T) {
	c := testClient(t)
	c.handle(inbound(t, "pos", posPayload{Pos: positionDTO{}, Dt: 0.05}))

	out := c.handle(inbound(t, "export_discoveries", struct{}{}))
	if out[0].Type != "discoveries" {
		t.Fatalf("expected discoveries message, got %s", out[0].Type)
	}
	snapshot := out[0].Payload.(json.RawMessage)

	fresh := testClient(t)
	out = fresh.handle(inbound(t, "import_discoveries", importPayload{Records: snapshot}))
	state := out[0].Payload.(stateDTO)
	if state.DiscoveredCount != c.session.Ledger.Len() {
		t.Fatalf("import mismatch: %d != %d", state.DiscoveredCount, c.session.Ledger.Len())
	}
}

func TestHandleRevealAllToggle(t *testing.T) {
	c := testClient(t)
	c.handle(inbound(t, "reveal_all", revealAllPayload{Enabled: true}))
	out := c.handle(inbound(t, "pos", posPayload{Pos: positionDTO{X: 99999}, Dt: 0.05}))
	if out[0].Type != "discovery" {
		t.Fatalf("expected reveal discoveries, got %v", out)
	}
	if c.session.Ledger.Len() != 3 {
		t.Fatalf("expected full catalog discovered, got %d", c.session.Ledger.Len())
	}
}

func TestHandleErrors(t *testing.T) {
	c := testClient(t)
	cases := []inboundMessage{
		inbound(t, "set_target", idPayload{ID: "z9_unknown"}),
		inbound(t, "set_waypoint_target", idPayload{ID: "wp-missing"}),
		inbound(t, "remove_waypoint", idPayload{ID: "wp-missing"}),
		inbound(t, "nonsense", struct{}{}),
		{Type: "pos", Payload: json.RawMessage(`{"pos": "garbage"}`)},
	}
	for _, msg := range cases {
		out := c.handle(msg)
		if len(out) != 1 || out[0].Type != "error" {
			t.Errorf("%s: expected single error message, got %v", msg.Type, out)
		}
	}
}

func TestParseNavOverridesFromQuery(t *testing.T) {
	values := map[string][]string{
		"discoveryRadius": {"25"},
		"revealAll":       {"true"},
	}
	o := parseNavOverrides(values)
	if o.DiscoveryRadius == nil || *o.DiscoveryRadius != 25 {
		t.Fatalf("expected radius override, got %+v", o.DiscoveryRadius)
	}
	if o.RevealAll == nil || !*o.RevealAll {
		t.Fatal("expected reveal-all override")
	}
}
