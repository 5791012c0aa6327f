package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"StarCharts/internal/nav"
	"StarCharts/internal/store"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type posPayload struct {
	Pos positionDTO `json:"pos"`
	Dt  float64     `json:"dt"`
}

type idPayload struct {
	ID string `json:"id"`
}

type createWaypointPayload struct {
	Name string      `json:"name"`
	Pos  positionDTO `json:"pos"`
}

type revealAllPayload struct {
	Enabled bool `json:"enabled"`
}

type importPayload struct {
	Records json.RawMessage `json:"records"`
}

// client binds one websocket connection to its navigation session.
type client struct {
	session   *nav.Session
	snapshots store.SnapshotStore
	log       *slog.Logger
}

// parseNavOverrides pulls per-connection QA tuning from the query
// string, mirroring the config file keys.
func parseNavOverrides(values url.Values) NavParamOverrides {
	var o NavParamOverrides
	if raw := values.Get("discoveryRadius"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			o.DiscoveryRadius = &v
		}
	}
	if raw := values.Get("revealAll"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			o.RevealAll = &b
		}
	}
	return o
}

func serveWS(hub *nav.Hub, snapshots store.SnapshotStore, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sessionID := query.Get("session")
	if sessionID == "" {
		sessionID = nav.RandID("nav-")
	}

	session, err := hub.GetSession(sessionID)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	logger := slog.With("component", "ws", "session", sessionID)
	c := &client{session: session, snapshots: snapshots, log: logger}

	c.applyOverrides(parseNavOverrides(query))
	c.restoreLedger(r.Context())

	c.send(conn, outboundMessage{Type: "state", Payload: c.state()})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		for _, out := range c.handle(msg) {
			c.send(conn, out)
		}
	}

	c.persistLedger(context.Background())
	logger.Debug("connection closed")
}

func (c *client) applyOverrides(o NavParamOverrides) {
	c.session.Mu.Lock()
	defer c.session.Mu.Unlock()
	if o.DiscoveryRadius != nil && *o.DiscoveryRadius > 0 {
		c.session.Engine.Radius = *o.DiscoveryRadius
	}
	if o.RevealAll != nil {
		c.session.Engine.RevealAll = *o.RevealAll
	}
}

// handle dispatches one inbound message and returns everything to send
// back. It owns the session lock for the duration of the mutation.
func (c *client) handle(msg inboundMessage) []outboundMessage {
	c.session.Mu.Lock()
	defer c.session.Mu.Unlock()

	switch msg.Type {
	case "pos":
		return c.handlePos(msg.Payload)
	case "set_target":
		var p idPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return c.errorOut("bad set_target payload")
		}
		if _, err := c.session.SetTargetByID(p.ID); err != nil {
			return c.errorOut(err.Error())
		}
		return c.stateOut()
	case "set_waypoint_target":
		var p idPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return c.errorOut("bad set_waypoint_target payload")
		}
		if _, ok := c.session.SetWaypointTarget(p.ID); !ok {
			return c.errorOut("unknown waypoint " + p.ID)
		}
		return c.stateOut()
	case "clear_target":
		c.session.Targets.SetTarget(nil)
		return c.stateOut()
	case "cycle_target":
		c.session.Targets.CycleTarget(c.session.PlayerPos)
		return c.stateOut()
	case "resume_waypoint":
		if !c.session.Targets.ResumeInterruptedWaypoint() {
			return c.errorOut("no interrupted waypoint")
		}
		return c.stateOut()
	case "create_waypoint":
		var p createWaypointPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return c.errorOut("bad create_waypoint payload")
		}
		wp, err := c.session.CreateWaypoint(p.Name, p.Pos.vec())
		if err != nil {
			return c.errorOut(err.Error())
		}
		return append(
			[]outboundMessage{{Type: "waypoint", Payload: toWaypointDTO(wp)}},
			c.stateOut()...,
		)
	case "remove_waypoint":
		var p idPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return c.errorOut("bad remove_waypoint payload")
		}
		if !c.session.RemoveWaypoint(p.ID) {
			return c.errorOut("unknown waypoint " + p.ID)
		}
		return c.stateOut()
	case "reveal_all":
		var p revealAllPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return c.errorOut("bad reveal_all payload")
		}
		c.session.Engine.RevealAll = p.Enabled
		return c.stateOut()
	case "export_discoveries":
		data, err := c.session.Ledger.ExportState()
		if err != nil {
			return c.errorOut(err.Error())
		}
		return []outboundMessage{{Type: "discoveries", Payload: json.RawMessage(data)}}
	case "import_discoveries":
		var p importPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return c.errorOut("bad import_discoveries payload")
		}
		if err := c.session.Ledger.ImportState(p.Records); err != nil {
			return c.errorOut(err.Error())
		}
		return c.stateOut()
	default:
		return c.errorOut("unknown message type " + msg.Type)
	}
}

func (c *client) handlePos(payload json.RawMessage) []outboundMessage {
	var p posPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return c.errorOut("bad pos payload")
	}
	dt := p.Dt
	if dt <= 0 {
		dt = 0.05
	}
	fresh, err := c.session.Tick(p.Pos.vec(), dt)
	if err != nil {
		return c.errorOut(err.Error())
	}
	if len(fresh) == 0 {
		return nil
	}
	dtos := make([]discoveryDTO, len(fresh))
	for i, rec := range fresh {
		dtos[i] = toDiscoveryDTO(rec)
	}
	go c.persistLedger(context.Background())
	return append(
		[]outboundMessage{{Type: "discovery", Payload: dtos}},
		c.stateOut()...,
	)
}

func (c *client) state() stateDTO {
	return toStateDTO(c.session)
}

func (c *client) stateOut() []outboundMessage {
	return []outboundMessage{{Type: "state", Payload: c.state()}}
}

func (c *client) errorOut(reason string) []outboundMessage {
	return []outboundMessage{{Type: "error", Payload: reason}}
}

func (c *client) send(conn *websocket.Conn, msg outboundMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		c.log.Debug("write failed", "error", err)
	}
}

// restoreLedger loads a persisted snapshot into an empty ledger. A
// session that already has discoveries (reconnect within the process
// lifetime) keeps what it has.
func (c *client) restoreLedger(ctx context.Context) {
	c.session.Mu.Lock()
	defer c.session.Mu.Unlock()
	if c.session.Ledger.Len() > 0 {
		return
	}
	data, err := c.snapshots.Load(ctx, c.session.ID)
	if err != nil {
		c.log.Warn("snapshot load failed", "error", err)
		return
	}
	if data == nil {
		return
	}
	if err := c.session.Ledger.ImportState(data); err != nil {
		c.log.Warn("snapshot import failed", "error", err)
		return
	}
	c.log.Info("restored discoveries", "count", c.session.Ledger.Len())
}

func (c *client) persistLedger(ctx context.Context) {
	c.session.Mu.Lock()
	data, err := c.session.Ledger.ExportState()
	c.session.Mu.Unlock()
	if err != nil {
		c.log.Warn("snapshot export failed", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.snapshots.Save(ctx, c.session.ID, data); err != nil {
		c.log.Warn("snapshot save failed", "error", err)
	}
}
