package main

import "dialog-collator/cmd"

func main() {
	cmd.Execute()
}
