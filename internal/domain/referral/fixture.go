package referral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Payload is the parsed search result: {"referralItems": [...]}.
type Payload struct {
	ReferralItems []Item `json:"referralItems"`
}

// DecodeItems reads referral items from JSON. Both a bare array and the
// {"referralItems": [...]} payload form are accepted.
func DecodeItems(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read referral items: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var items []Item
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode referral items: %w", err)
		}
		return items, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode referral payload: %w", err)
	}
	return p.ReferralItems, nil
}

// StaticSource serves a fixed set of referral items. It stands in for the
// bureau when running against recorded data.
type StaticSource struct {
	Items []Item
}

// LoadFixture builds a StaticSource from a JSON file.
func LoadFixture(path string) (*StaticSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	items, err := DecodeItems(f)
	if err != nil {
		return nil, err
	}
	return &StaticSource{Items: items}, nil
}

// Fetch returns a copy of the stored items. The query is not applied; the
// journal pipeline filters locally either way.
func (s *StaticSource) Fetch(ctx context.Context, _ Query) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Item, len(s.Items))
	copy(out, s.Items)
	return out, nil
}
