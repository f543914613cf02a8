package main

import "github.com/shaharishay14/service-tracker/cmd"

func main() {
	cmd.Execute()
}
