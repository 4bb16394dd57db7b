package issue

import "encoding/json"

// Snapshot is an immutable text state. A new version replaces it on every edit.
type Snapshot struct {
	text    string
	version int64
}

func NewSnapshot(text string, version int64) Snapshot {
	return Snapshot{text: text, version: version}
}

func (s Snapshot) Text() string   { return s.text }
func (s Snapshot) Version() int64 { return s.version }
func (s Snapshot) Len() int       { return len(s.text) }

// Next returns the snapshot that follows s with the given text.
func (s Snapshot) Next(text string) Snapshot {
	return Snapshot{text: text, version: s.version + 1}
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text    string `json:"text"`
		Version int64  `json:"version"`
	}{s.text, s.version})
}
