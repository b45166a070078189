package main

import "github.com/MeKo-Tech/frameocr/cmd/frameocr/cmd"

func main() {
	cmd.Execute()
}
