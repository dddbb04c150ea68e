package main

import "github.com/mergington/activities/cmd/mgctl/cmd"

func main() {
	cmd.Execute()
}
