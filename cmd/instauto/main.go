package main

import (
	"instauto/cmd/instauto/commands"
	"instauto/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
