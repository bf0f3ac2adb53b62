package main

import "github.com/kube-rca/incident-chat/cmd"

// Set by ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cmd.Execute(version, commit)
}
