package packet

import (
	"encoding/json"
	"fmt"
)

// Encode builds a server message of type typ with payload v.
func Encode(typ string, v any) ([]byte, error) {
	var raw json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", typ, err)
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: typ, Data: raw})
}

// MustEncode is Encode for payloads that cannot fail to marshal: plain
// structs of numbers, strings and ids. A failure is a programming error.
func MustEncode(typ string, v any) []byte {
	b, err := Encode(typ, v)
	if err != nil {
		panic("packet: " + err.Error())
	}
	return b
}
