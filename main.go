package main

import "github.com/multicore-sim/multicore-sim/cmd"

func main() {
	cmd.Execute()
}
