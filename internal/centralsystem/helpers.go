package centralsystem

import "encoding/json"

func decodeInto(raw json.RawMessage, out any) error {
	return json.Unmarshal(raw, out)
}
