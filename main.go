package main

import "github.com/selimozcann/adtrace/cmd"

func main() {
	cmd.Execute()
}
