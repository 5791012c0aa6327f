package nav

import (
	"encoding/json"
	"fmt"
	"time"
)

type DiscoveryMethod string

const (
	DiscoveryProximity     DiscoveryMethod = "proximity"
	DiscoveryManual        DiscoveryMethod = "manual"
	DiscoveryTestMode      DiscoveryMethod = "test-mode"
	DiscoveryMissionReward DiscoveryMethod = "mission-reward"
)

// DiscoveryRecord is created exactly once per object on first discovery.
type DiscoveryRecord struct {
	ID        ObjectID        `json:"id"`
	Method    DiscoveryMethod `json:"method"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	Sector    string          `json:"sector"`
}

// DiscoveryLedger is the set of discovered object ids plus per-object
// discovery metadata. Discovery is monotonic: ids are never removed
// except by an explicit Reset, which only test and debug flows call.
type DiscoveryLedger struct {
	records map[ObjectID]*DiscoveryRecord
	order   []ObjectID
	now     func() time.Time
}

func NewDiscoveryLedger() *DiscoveryLedger {
	return &DiscoveryLedger{
		records: make(map[ObjectID]*DiscoveryRecord),
		now:     time.Now,
	}
}

// IsDiscovered reports membership after id normalization. Malformed ids
// are simply not discovered.
func (l *DiscoveryLedger) IsDiscovered(raw string) bool {
	id, err := NormalizeID(raw)
	if err != nil {
		return false
	}
	_, ok := l.records[id]
	return ok
}

// Record marks an object discovered. Returns (nil, nil) if the id is
// already in the ledger: recording is idempotent, and the caller can use
// the nil to tell a fresh discovery from a repeat.
func (l *DiscoveryLedger) Record(raw string, method DiscoveryMethod, sector string) (*DiscoveryRecord, error) {
	id, err := NormalizeID(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := l.records[id]; ok {
		return nil, nil
	}
	rec := &DiscoveryRecord{
		ID:        id,
		Method:    method,
		Timestamp: l.now().UnixMilli(),
		Sector:    sector,
	}
	l.records[id] = rec
	l.order = append(l.order, id)
	return rec, nil
}

// Get returns the record for an id, if discovered.
func (l *DiscoveryLedger) Get(raw string) (*DiscoveryRecord, bool) {
	id, err := NormalizeID(raw)
	if err != nil {
		return nil, false
	}
	rec, ok := l.records[id]
	return rec, ok
}

// Reset clears all records. Test/debug workflows only.
func (l *DiscoveryLedger) Reset() {
	l.records = make(map[ObjectID]*DiscoveryRecord)
	l.order = nil
}

// DiscoveredIDs returns a snapshot of all discovered ids in first-seen order.
func (l *DiscoveryLedger) DiscoveredIDs() []ObjectID {
	out := make([]ObjectID, len(l.order))
	copy(out, l.order)
	return out
}

func (l *DiscoveryLedger) Len() int { return len(l.records) }

// ExportState serializes the full ledger as a JSON array of records.
// Round-tripping through ImportState is lossless for id, method,
// timestamp and sector.
func (l *DiscoveryLedger) ExportState() ([]byte, error) {
	records := make([]*DiscoveryRecord, 0, len(l.order))
	for _, id := range l.order {
		records = append(records, l.records[id])
	}
	return json.Marshal(records)
}

// ImportState replaces the ledger contents with a previously exported
// snapshot. Ids are normalized on the way in; duplicate ids keep the
// first occurrence.
func (l *DiscoveryLedger) ImportState(data []byte) error {
	var records []DiscoveryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse ledger snapshot: %w", err)
	}
	fresh := make(map[ObjectID]*DiscoveryRecord, len(records))
	var order []ObjectID
	for i := range records {
		rec := records[i]
		id, err := NormalizeID(string(rec.ID))
		if err != nil {
			return err
		}
		if _, ok := fresh[id]; ok {
			continue
		}
		rec.ID = id
		fresh[id] = &rec
		order = append(order, id)
	}
	l.records = fresh
	l.order = order
	return nil
}
