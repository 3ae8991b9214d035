package main

import "github.com/seamui/seam/cmd/seam/cmd"

func main() {
	cmd.Execute()
}
