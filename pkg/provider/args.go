package provider

import (
	"encoding/json"
	"fmt"
)

// normalizeArgs converts decoded JSON tool arguments to the string map the
// invocation protocol uses. String values pass through; everything else is
// re-encoded as JSON.
func normalizeArgs(raw map[string]interface{}) map[string]string {
	args := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			args[k] = val
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				args[k] = fmt.Sprintf("%v", val)
				continue
			}
			args[k] = string(encoded)
		}
	}
	return args
}

// argsToInput converts string arguments back to the generic map shape the
// provider SDKs expect for tool-use blocks.
func argsToInput(args map[string]string) map[string]interface{} {
	input := make(map[string]interface{}, len(args))
	for k, v := range args {
		input[k] = v
	}
	return input
}
