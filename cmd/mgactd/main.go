package main

import "github.com/mergington/activities/cmd/mgactd/cmd"

func main() {
	cmd.Execute()
}
