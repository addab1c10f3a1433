package main

import "github.com/raksha-app/raksha/cmd"

func main() {
	cmd.Execute()
}
