package main

import (
	"context"

	"tmscout-backend/cmd/tmscout/commands"
	"tmscout-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "tmscout")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
