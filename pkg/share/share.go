package share

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

// Snapshot is the minimal read-only projection of tracker state carried in
// a share link. It drives no mutation on the receiving side.
type Snapshot struct {
	Logs     habit.LogMap  `msgpack:"logs"`
	Template []habit.Habit `msgpack:"template"`
	Goal     int           `msgpack:"goal"`
}

// Stats is the presentation-only projection derived from a snapshot.
// Frequency and Impact are signed per habit: +1/+xp per healthy
// completion, -1/-xp per indulged vice.
type Stats struct {
	TotalXP  int
	LogCount int
	Freq     map[string]int
	Impact   map[string]int
}

// Encode serializes a snapshot into a URL-safe token: msgpack, deflate,
// then unpadded base64url.
func Encode(snap Snapshot) (string, error) {
	packed, err := msgpack.Marshal(snap)
	if err != nil {
		return "", errors.Errorf("packing share snapshot: %w", err)
	}

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", errors.Errorf("creating compressor: %w", err)
	}
	if _, err := fw.Write(packed); err != nil {
		return "", errors.Errorf("compressing share snapshot: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", errors.Errorf("flushing compressor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode is the inverse of Encode. Any failure returns (nil, false) so the
// caller can fall back to local state; corrupt tokens never escalate past
// this boundary.
func Decode(token string) (*Snapshot, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		log.Debug().Err(err).Msg("share token is not valid base64url")
		return nil, false
	}

	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()
	packed, err := io.ReadAll(fr)
	if err != nil {
		log.Debug().Err(err).Msg("share token failed to decompress")
		return nil, false
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(packed, &snap); err != nil {
		log.Debug().Err(err).Msg("share token failed to unpack")
		return nil, false
	}
	return &snap, true
}

// DeriveStats walks every truthy log entry, resolving habits by the id
// encoded as the trailing component of the log key. The sign of each
// contribution follows the vice name sigil, applied to the XP magnitude;
// after import normalization this agrees with the habit's Kind.
func DeriveStats(snap *Snapshot) Stats {
	s := Stats{
		Freq:   make(map[string]int, len(snap.Template)),
		Impact: make(map[string]int, len(snap.Template)),
	}
	byID := make(map[string]habit.Habit, len(snap.Template))
	for _, h := range snap.Template {
		byID[h.ID] = h
		s.Freq[h.ID] = 0
		s.Impact[h.ID] = 0
	}

	for key, checked := range snap.Logs {
		if !checked {
			continue
		}
		id := habit.KeyHabitID(key)
		if id == "" {
			continue
		}
		h, ok := byID[id]
		if !ok {
			continue
		}

		mult := 1
		if habit.IsViceName(h.Name) {
			mult = -1
		}
		mag := h.XP
		if mag < 0 {
			mag = -mag
		}

		s.TotalXP += mult * mag
		s.Freq[id] += mult
		s.Impact[id] += mult * mag
		s.LogCount++
	}
	return s
}
