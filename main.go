package main

import "cypher_chat/cmd"

func main() {
	cmd.Execute()
}
