package cfgloader

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rise-and-shine/filestash/pkg/mask"
)

// printConfig logs the loaded config with fields tagged mask:"true" redacted.
func printConfig(config any) {
	om := mask.StructToOrdMap(config)

	out, err := json.MarshalIndent(om, "", "  ")
	if err != nil {
		slog.Error("failed to marshal config", "error", err.Error())
		return
	}
	slog.Info(fmt.Sprintf("Loaded config:\n%s", string(out)))
}
