package main

import "modelmind/cmd"

func main() {
	cmd.Execute()
}
