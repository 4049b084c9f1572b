package main

import "github.com/isdelr/despesas-be/cmd"

func main() {
	cmd.Execute()
}
