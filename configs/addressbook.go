package configs

import (
	"os"

	"github.com/goccy/go-json"
)

// AddressBook is the minimal JSON configuration a participant reads on
// startup, in the teacher's loadConfig idiom (network/coordinator/main.go,
// network/participant/main.go) adapted to this protocol's much smaller
// configuration surface: a participant only needs to know where to
// send its votes, decisions' ACKs, and nothing else.
type AddressBook struct {
	Coordinator string `json:"coordinator"`
}

// LoadAddressBook reads and parses the JSON file at path.
func LoadAddressBook(path string) (*AddressBook, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	book := &AddressBook{}
	if err := json.Unmarshal(raw, book); err != nil {
		return nil, err
	}
	return book, nil
}
