package callstate

import "encoding/json"

// ParseFailureMessage is the error text stored when a specialist could not
// decode the model's reply as JSON.
const ParseFailureMessage = "Failed to parse response"

// Extracted is the outcome of one specialist's structured extraction. It is a
// two-variant union: either Value holds the fully-typed decoded fragment, or
// the decode failed and Err/Raw carry the failure marker plus the unmodified
// model text. There is no partially-typed middle ground — readers check
// [Extracted.Parsed] once instead of null-guarding every nested field.
type Extracted struct {
	// Value is the typed fragment. Nil when decoding failed.
	Value any

	// Err is [ParseFailureMessage] when decoding failed, empty otherwise.
	Err string

	// Raw is the unmodified model reply, retained only on decode failure.
	Raw string
}

// Parsed creates the success variant.
func Parsed(v any) Extracted {
	return Extracted{Value: v}
}

// Unparsed creates the failure variant carrying the raw model text.
func Unparsed(raw string) Extracted {
	return Extracted{Err: ParseFailureMessage, Raw: raw}
}

// OK reports whether this fragment holds a decoded value.
func (e Extracted) OK() bool {
	return e.Err == ""
}

// MarshalJSON renders the success variant as the typed value itself and the
// failure variant as {"error": ..., "rawResponse": ...}.
func (e Extracted) MarshalJSON() ([]byte, error) {
	if !e.OK() {
		return json.Marshal(struct {
			Error       string `json:"error"`
			RawResponse string `json:"rawResponse"`
		}{Error: e.Err, RawResponse: e.Raw})
	}
	return json.Marshal(e.Value)
}
