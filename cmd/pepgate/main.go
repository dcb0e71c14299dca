package main

import (
	"log"

	"github.com/Silverbook/pep-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
