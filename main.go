package main

import "github.com/Lumos-Labs-HQ/restock/cmd"

func main() {
	cmd.Execute()
}
