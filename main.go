package main

import "barberqueue-backend/cli"

func main() {
	cli.Execute()
}
