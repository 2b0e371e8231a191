// Package wire implements the single on-wire record type shared by the
// coordinator and every participant, §3/§4.1 of the protocol.
package wire

import (
	"github.com/goccy/go-json"
)

// Message is the sole record type exchanged between the coordinator and
// its participants. Type is one of the six constants in configs
// (PREPARE, VOTECOMMIT, VOTEABORT, COMMIT_SUC, COMMIT_FAIL, ACK).
type Message struct {
	Type     string   `json:"type"`
	FileName string   `json:"fileName"`
	Content  []byte   `json:"content,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

// Encode serializes m for transport. It is total over well-formed
// messages.
func Encode(m *Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses bytes produced by Encode. Malformed input returns an
// error; the protocol's §7 error taxonomy treats that as message loss:
// the caller logs and drops rather than propagating the fault.
func Decode(b []byte) (*Message, error) {
	m := &Message{}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, err
	}
	return m, nil
}
