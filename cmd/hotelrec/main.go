package main

import (
	"os"

	"hotel_recommender/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
