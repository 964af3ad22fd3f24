package util

import (
	"encoding/json"
	"os"
)

// PrintJSON writes obj to stdout as indented JSON. HTML escaping is off
// so URLs and env values print verbatim.
func PrintJSON(obj any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(obj)
}
