package main

import "github.com/quickkv/quickkv/cmd"

func main() {
	cmd.Execute()
}
