package main

import (
	"log"

	"github.com/practicelabs/interview-partner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
