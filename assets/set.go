package assets

import (
	"encoding/json"
	"sort"
)

type Asset struct {
	Href      string   `json:"href"`
	Title     string   `json:"title,omitempty"`
	MediaType string   `json:"type,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// HasRole reports whether role is one of the asset's roles.
func (a Asset) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Set holds an item's assets in insertion order. The first asset registered under a key
// is kept; later ones are refused.
type Set struct {
	keys  []string
	byKey map[string]Asset
}

func NewSet() *Set {
	return &Set{byKey: make(map[string]Asset)}
}

// Add registers a under key unless the key is already taken.
func (s *Set) Add(key string, a Asset) bool {
	if _, taken := s.byKey[key]; taken {
		return false
	}
	s.keys = append(s.keys, key)
	s.byKey[key] = a
	return true
}

func (s *Set) Get(key string) (Asset, bool) {
	a, ok := s.byKey[key]
	return a, ok
}

func (s *Set) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s *Set) Len() int {
	return len(s.keys)
}

// WithRole returns the first asset carrying role.
func (s *Set) WithRole(role string) (string, Asset, bool) {
	for _, k := range s.keys {
		if a := s.byKey[k]; a.HasRole(role) {
			return k, a, true
		}
	}
	return "", Asset{}, false
}

func (s *Set) MarshalJSON() ([]byte, error) {
	if s.byKey == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.byKey)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	m := make(map[string]Asset)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	*s = Set{byKey: make(map[string]Asset, len(m))}
	for _, k := range keys {
		s.Add(k, m[k])
	}
	return nil
}
