package contract

import (
	"encoding/json"
	"fmt"
)

func fmtAny(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
