package main

import (
	"ecourts-backend/cmd/ecourts-cli/commands"
	"ecourts-backend/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
