package main

import "resopt/cmd"

func main() {
	cmd.Execute()
}
