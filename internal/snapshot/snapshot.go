package snapshot

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Version is the current record format.
const Version = 1

var (
	// ErrChecksum is returned when a payload does not match its checksum.
	ErrChecksum = errors.New("snapshot checksum mismatch")

	// ErrVersion is returned for records written by an unknown format version.
	ErrVersion = errors.New("unsupported snapshot version")

	// ErrNotFound is returned by stores that have no record for an agent.
	ErrNotFound = errors.New("snapshot not found")
)

// KV is the flat persisted state of one agent. Booleans are 0/1, enums their
// integer values.
type KV map[string]int64

// Get returns the value stored under key.
func (kv KV) Get(key string) (int64, bool) {
	v, ok := kv[key]
	return v, ok
}

// Int returns key as int, or def when missing.
func (kv KV) Int(key string, def int) int {
	if v, ok := kv[key]; ok {
		return int(v)
	}
	return def
}

// SetBool stores v as 0/1.
func (kv KV) SetBool(key string, v bool) {
	if v {
		kv[key] = 1
		return
	}
	kv[key] = 0
}

// Bool returns key as bool (non-zero is true).
func (kv KV) Bool(key string) bool {
	return kv[key] != 0
}

// Keys returns the keys in sorted order.
func (kv KV) Keys() []string {
	return slices.Sorted(maps.Keys(kv))
}

// Record is one persisted agent.
type Record struct {
	Version  int        `json:"version"`
	Agent    uuid.UUID  `json:"agent"`
	Species  string     `json:"species"`
	Tick     uint64     `json:"tick"`
	Position [3]float64 `json:"position"`
	Yaw      float64    `json:"yaw"`
	Values   KV         `json:"values"`
}

// Store persists records by agent.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, agent uuid.UUID) (Record, error)
}

// Checksum returns the blake2b-256 digest of payload.
func Checksum(payload []byte) []byte {
	sum := blake2b.Sum256(payload)
	return sum[:]
}

// Marshal encodes rec and returns the payload and its checksum.
func Marshal(rec Record) (payload, sum []byte, err error) {
	if rec.Version == 0 {
		rec.Version = Version
	}
	if rec.Values == nil {
		rec.Values = KV{}
	}
	payload, err = json.Marshal(rec)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding snapshot %s: %w", rec.Agent, err)
	}
	return payload, Checksum(payload), nil
}

// Unmarshal decodes payload and verifies sum. The checksum is computed over
// the canonical encoding, so payloads reformatted by storage (jsonb) verify.
func Unmarshal(payload, sum []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if rec.Version != Version {
		return Record{}, fmt.Errorf("snapshot %s version %d: %w", rec.Agent, rec.Version, ErrVersion)
	}

	canonical, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("re-encoding snapshot %s: %w", rec.Agent, err)
	}
	if subtle.ConstantTimeCompare(Checksum(canonical), sum) != 1 {
		return Record{}, fmt.Errorf("snapshot %s: %w", rec.Agent, ErrChecksum)
	}
	if rec.Values == nil {
		rec.Values = KV{}
	}
	return rec, nil
}

type envelope struct {
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// Encode returns a self-contained document carrying rec and its checksum.
func Encode(rec Record) ([]byte, error) {
	payload, sum, err := Marshal(rec)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(envelope{Checksum: hex.EncodeToString(sum), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encoding envelope %s: %w", rec.Agent, err)
	}
	return data, nil
}

// Decode parses a document produced by Encode.
func Decode(data []byte) (Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Record{}, fmt.Errorf("decoding envelope: %w", err)
	}
	sum, err := hex.DecodeString(env.Checksum)
	if err != nil {
		return Record{}, fmt.Errorf("decoding checksum: %w", ErrChecksum)
	}
	return Unmarshal(env.Payload, sum)
}
