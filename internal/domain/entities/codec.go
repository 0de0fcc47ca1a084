package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

type bookFields Book

// MarshalJSON writes a non-integer ID back exactly as it was read.
func (b Book) MarshalJSON() ([]byte, error) {
	if b.RawID == nil {
		return json.Marshal(bookFields(b))
	}

	return json.Marshal(struct {
		ID json.RawMessage `json:"id"`
		bookFields
	}{ID: b.RawID, bookFields: bookFields(b)})
}

// UnmarshalJSON accepts any integral JSON number as the ID, including 1.0
// and 1e3. Other IDs are kept in RawID.
func (b *Book) UnmarshalJSON(data []byte) error {
	aux := struct {
		ID json.RawMessage `json:"id"`
		*bookFields
	}{bookFields: (*bookFields)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, raw := decodeStoredInt(aux.ID, math.MinInt, math.MaxInt)
	b.ID, b.RawID = int(id), raw
	return nil
}

type userFields User

// MarshalJSON writes a non-integer timestamp back exactly as it was read.
func (u User) MarshalJSON() ([]byte, error) {
	if u.RawCreatedAt == nil {
		return json.Marshal(userFields(u))
	}

	return json.Marshal(struct {
		userFields
		CreatedAt json.RawMessage `json:"created_at"`
	}{userFields: userFields(u), CreatedAt: u.RawCreatedAt})
}

// UnmarshalJSON accepts any integral JSON number as the timestamp.
func (u *User) UnmarshalJSON(data []byte) error {
	aux := struct {
		*userFields
		CreatedAt json.RawMessage `json:"created_at"`
	}{userFields: (*userFields)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	u.CreatedAt, u.RawCreatedAt = decodeStoredInt(aux.CreatedAt, math.MinInt64, math.MaxInt64)
	return nil
}

// decodeStoredInt returns the integer held by a JSON number within [lo, hi].
// A missing or null value is 0. Anything else is returned as raw.
func decodeStoredInt(data json.RawMessage, lo, hi int64) (int64, json.RawMessage) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	s := string(data)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= lo && n <= hi {
			return n, nil
		}
		return 0, append(json.RawMessage(nil), data...)
	}

	// Quoted values fail here; only JSON numbers parse as floats.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && f >= float64(lo) && f < float64(hi) {
		return int64(f), nil
	}

	return 0, append(json.RawMessage(nil), data...)
}
