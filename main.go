package main

import "yttitle/cmd"

func main() {
	cmd.Execute()
}
