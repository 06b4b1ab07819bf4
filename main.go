package main

import "github.com/theirongolddev/scalelog/cmd"

func main() {
	cmd.Execute()
}
