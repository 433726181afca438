package main

import "record-collection/cmd"

func main() {
	cmd.Execute()
}
